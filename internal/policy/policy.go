// Package policy holds every ownership and role rule for projects and tasks.
package policy

import (
	"context"
	"errors"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/types"
)

type Action string

const (
	ProjectList    Action = "project:list"
	ProjectRead    Action = "project:read"
	ProjectCreate  Action = "project:create"
	ProjectUpdate  Action = "project:update"
	ProjectDelete  Action = "project:delete"
	ProjectStatus  Action = "project:status"
	CategoryManage Action = "category:manage"
	TaskCreate     Action = "task:create"
	TaskRead       Action = "task:read"
	TaskUpdate     Action = "task:update"
	TaskStatus     Action = "task:status"
	TaskDelete     Action = "task:delete"
	UserList       Action = "user:list"
	AdminArea      Action = "admin"
)

// Caller is the identity taken from a verified session token.
type Caller struct {
	ID    uint
	Name  string
	Email string
	Role  types.Role
}

// Resource describes the object an action targets. A nil *Resource means the collection.
type Resource struct {
	AssigneeID uint
}

var ErrUnknownUser = errors.New("user no longer exists")

type RoleResolver interface {
	CurrentRole(ctx context.Context, userID uint) (types.Role, error)
}

type Authorizer struct {
	roles RoleResolver
}

func NewAuthorizer(roles RoleResolver) *Authorizer {
	return &Authorizer{roles: roles}
}

// Allowed evaluates the rules for a role that has already been resolved.
func Allowed(role types.Role, callerID uint, action Action, resource *Resource) bool {
	isAdmin := role == types.RoleAdmin

	switch action {
	case ProjectList, UserList, TaskRead, TaskUpdate, TaskStatus, TaskDelete:
		return true
	case ProjectRead, ProjectStatus:
		if isAdmin {
			return true
		}
		return resource != nil && resource.AssigneeID == callerID
	case ProjectCreate, ProjectUpdate, ProjectDelete, CategoryManage, TaskCreate, AdminArea:
		return isAdmin
	default:
		return false
	}
}

// Role re-reads the caller's role from the store; the token's role claim is never trusted.
func (a *Authorizer) Role(ctx context.Context, caller Caller) (types.Role, error) {
	role, err := a.roles.CurrentRole(ctx, caller.ID)

	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return "", apperr.Auth("User not authenticated")
		}
		return "", apperr.Internal("Authorization failed", err)
	}

	return role, nil
}

func (a *Authorizer) Can(ctx context.Context, caller Caller, action Action, resource *Resource) error {
	role, err := a.Role(ctx, caller)

	if err != nil {
		return err
	}

	if !Allowed(role, caller.ID, action, resource) {
		return forbidden(action)
	}

	return nil
}

func forbidden(action Action) *apperr.Error {
	switch action {
	case ProjectStatus:
		return apperr.Forbidden("Only the project assignee or an admin can change its status")
	case ProjectRead:
		return apperr.Forbidden("You are not assigned to this project")
	default:
		return apperr.Forbidden("Forbidden: Admin access required")
	}
}
