package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/types"
)

type fakeRoles map[uint]types.Role

func (f fakeRoles) CurrentRole(_ context.Context, userID uint) (types.Role, error) {
	role, ok := f[userID]
	if !ok {
		return "", ErrUnknownUser
	}
	return role, nil
}

type brokenRoles struct{}

func (brokenRoles) CurrentRole(context.Context, uint) (types.Role, error) {
	return "", errors.New("connection reset")
}

func TestAllowed(t *testing.T) {
	owned := &Resource{AssigneeID: 7}

	tests := []struct {
		name     string
		role     types.Role
		callerID uint
		action   Action
		resource *Resource
		want     bool
	}{
		{"member lists projects", types.RoleMember, 7, ProjectList, nil, true},
		{"assignee reads project", types.RoleMember, 7, ProjectRead, owned, true},
		{"other member reads project", types.RoleMember, 8, ProjectRead, owned, false},
		{"admin reads any project", types.RoleAdmin, 1, ProjectRead, owned, true},
		{"assignee changes status", types.RoleMember, 7, ProjectStatus, owned, true},
		{"other member changes status", types.RoleMember, 8, ProjectStatus, owned, false},
		{"admin changes status", types.RoleAdmin, 1, ProjectStatus, owned, true},
		{"member creates project", types.RoleMember, 7, ProjectCreate, nil, false},
		{"assignee edits project", types.RoleMember, 7, ProjectUpdate, owned, false},
		{"assignee deletes project", types.RoleMember, 7, ProjectDelete, owned, false},
		{"admin deletes project", types.RoleAdmin, 1, ProjectDelete, owned, true},
		{"member creates task", types.RoleMember, 7, TaskCreate, nil, false},
		{"member changes task status", types.RoleMember, 8, TaskStatus, nil, true},
		{"member deletes task", types.RoleMember, 8, TaskDelete, nil, true},
		{"member manages categories", types.RoleMember, 7, CategoryManage, owned, false},
		{"unknown action", types.RoleAdmin, 1, Action("project:archive"), nil, false},
		{"status on missing resource", types.RoleMember, 7, ProjectStatus, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.role, tt.callerID, tt.action, tt.resource))
		})
	}
}

func TestCanUsesStoredRoleNotTokenRole(t *testing.T) {
	authorizer := NewAuthorizer(fakeRoles{5: types.RoleMember})

	// Token still claims ADMIN after a demotion.
	caller := Caller{ID: 5, Role: types.RoleAdmin}

	err := authorizer.Can(context.Background(), caller, ProjectDelete, &Resource{AssigneeID: 9})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestCanUnknownUserIsUnauthenticated(t *testing.T) {
	authorizer := NewAuthorizer(fakeRoles{})

	err := authorizer.Can(context.Background(), Caller{ID: 3}, ProjectList, nil)

	assert.True(t, apperr.IsKind(err, apperr.KindAuth))
}

func TestCanStoreFailureIsInternal(t *testing.T) {
	authorizer := NewAuthorizer(brokenRoles{})

	err := authorizer.Can(context.Background(), Caller{ID: 3}, ProjectList, nil)

	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}

func TestCanAllowsAdmin(t *testing.T) {
	authorizer := NewAuthorizer(fakeRoles{1: types.RoleAdmin})

	err := authorizer.Can(context.Background(), Caller{ID: 1, Role: types.RoleMember}, ProjectCreate, nil)

	assert.NoError(t, err)
}
