package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/db"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/storage"
	"github.com/taskdeck/taskdeck/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeImages struct {
	uploads []storage.Result
	removed []string
	err     error
}

func (f *fakeImages) Upload(_ context.Context, file storage.File) (storage.Result, error) {
	if err := storage.Validate(file); err != nil {
		return storage.Result{}, err
	}
	if f.err != nil {
		return storage.Result{}, f.err
	}
	key := "projects/" + file.Name
	result := storage.Result{URL: "https://cdn.example.com/" + key, Key: key}
	f.uploads = append(f.uploads, result)
	return result, nil
}

func (f *fakeImages) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

var errStoreDown = errors.New("storage unreachable")

type fixture struct {
	db       *gorm.DB
	users    *UserService
	projects *ProjectService
	tasks    *TaskService
	images   *fakeImages
	changed  []uint
	assigned []uint

	admin  policy.Caller
	member policy.Caller
	other  policy.Caller
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.ConnectDatabase(db.DriverSQLite, filepath.Join(t.TempDir(), "taskdeck.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateDatabase(conn))

	return conn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{db: newTestDB(t), images: &fakeImages{}}

	users, err := NewUserService(f.db, &auth.PasswordHasher{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	hooks := Hooks{
		ProjectChanged: func(id uint) { f.changed = append(f.changed, id) },
		ProjectAssigned: func(project models.Project, assignee models.User) {
			f.assigned = append(f.assigned, assignee.ID)
		},
	}

	authz := policy.NewAuthorizer(users)

	f.users = users
	f.projects = NewProjectService(f.db, authz, f.images, hooks)
	f.tasks = NewTaskService(f.db, authz, hooks)

	f.admin = f.seedUser(t, "Alice Admin", "alice@example.com", types.RoleAdmin)
	f.member = f.seedUser(t, "Bobby Member", "bobby@example.com", types.RoleMember)
	f.other = f.seedUser(t, "Carol Member", "carol@example.com", types.RoleMember)

	return f
}

func (f *fixture) seedUser(t *testing.T, name, email string, role types.Role) policy.Caller {
	t.Helper()

	user, err := f.users.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)

	if role != types.RoleMember {
		user, err = f.users.SetRole(context.Background(), email, role)
		require.NoError(t, err)
	}

	return policy.Caller{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func (f *fixture) seedProject(t *testing.T, title string, assignee policy.Caller) models.Project {
	t.Helper()

	project, err := f.projects.Create(context.Background(), f.admin, CreateProjectInput{
		Title:      title,
		AssignToID: assignee.ID,
	})
	require.NoError(t, err)

	return project
}

func (f *fixture) countProjects(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.Model(&models.Project{}).Count(&count).Error)
	return count
}

func ptr[T any](v T) *T {
	return &v
}
