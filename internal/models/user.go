package models

import "github.com/taskdeck/taskdeck/internal/types"

type User struct {
	BaseModel

	Name         string     `gorm:"uniqueIndex;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         types.Role `gorm:"not null;default:MEMBER" json:"role"`
}

func (u User) Public() types.UserResponse {
	return types.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// UserSummary is the assignee/creator shape embedded in project and task payloads.
type UserSummary struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  types.Role `json:"role,omitempty"`
}

func (UserSummary) TableName() string {
	return "users"
}
