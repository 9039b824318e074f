package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/types"
	"gorm.io/gorm"
)

const invalidCredentials = "Invalid email or password"

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

type UserService struct {
	db     *gorm.DB
	hasher *auth.PasswordHasher

	// Compared against when the email is unknown so both failure paths cost a bcrypt check.
	dummyHash string
}

func NewUserService(db *gorm.DB, hasher *auth.PasswordHasher) (*UserService, error) {
	dummyHash, err := hasher.Hash("taskdeck-dummy-password")

	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &UserService{db: db, hasher: hasher, dummyHash: dummyHash}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateRegistration(in RegisterInput) error {
	var problems []string

	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) <= 4 {
		problems = append(problems, "Name must be more than 4 characters")
	}

	email := normalizeEmail(in.Email)
	if !strings.Contains(email, "@") || utf8.RuneCountInString(email) <= 10 {
		problems = append(problems, "Email must contain @ and be more than 10 characters")
	}

	if utf8.RuneCountInString(in.Password) < 6 {
		problems = append(problems, "Password must be at least 6 characters")
	}

	if len(problems) > 0 {
		return apperr.Validation(strings.Join(problems, ", "))
	}

	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.UserResponse, error) {
	if err := ValidateRegistration(in); err != nil {
		return types.UserResponse{}, err
	}

	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	var existing models.User

	err := s.db.WithContext(ctx).Where("email = ? OR name = ?", email, name).First(&existing).Error

	if err == nil {
		if existing.Email == email {
			return types.UserResponse{}, apperr.Conflict("Email already exists")
		}
		return types.UserResponse{}, apperr.Conflict("Name already exists")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.UserResponse{}, apperr.Internal("Failed to register user", err)
	}

	passwordHash, err := s.hasher.Hash(in.Password)

	if err != nil {
		return types.UserResponse{}, apperr.Internal("Failed to register user", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         types.RoleMember,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.UserResponse{}, apperr.Conflict("Email or name already exists")
		}
		return types.UserResponse{}, apperr.Internal("Failed to register user", err)
	}

	return user.Public(), nil
}

// Login never says whether the email or the password was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (types.UserResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return types.UserResponse{}, apperr.Validation("Email and password are required")
	}

	var user models.User

	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return types.UserResponse{}, apperr.Auth(invalidCredentials)
		}
		return types.UserResponse{}, apperr.Internal("Failed to log in", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return types.UserResponse{}, apperr.Auth(invalidCredentials)
	}

	return user.Public(), nil
}

func (s *UserService) List(ctx context.Context) ([]types.UserResponse, error) {
	var users []models.User

	if err := s.db.WithContext(ctx).Order("name asc").Find(&users).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}

	response := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, user.Public())
	}

	return response, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, apperr.Internal("Failed to fetch user", err)
	}

	return user, nil
}

// CurrentRole implements policy.RoleResolver.
func (s *UserService) CurrentRole(ctx context.Context, userID uint) (types.Role, error) {
	var user models.User

	err := s.db.WithContext(ctx).Select("id", "role").First(&user, userID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", policy.ErrUnknownUser
		}
		return "", err
	}

	return user.Role, nil
}

// SetRole writes a role straight to the store. There is no HTTP route for it.
func (s *UserService) SetRole(ctx context.Context, email string, role types.Role) (types.UserResponse, error) {
	if !role.Valid() {
		return types.UserResponse{}, apperr.Validation("Role must be ADMIN or MEMBER")
	}

	var user models.User

	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.UserResponse{}, apperr.NotFound("User not found")
		}
		return types.UserResponse{}, apperr.Internal("Failed to fetch user", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return types.UserResponse{}, apperr.Internal("Failed to update role", err)
	}

	user.Role = role

	return user.Public(), nil
}
