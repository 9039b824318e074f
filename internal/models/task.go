package models

import "gorm.io/datatypes"

type Task struct {
	BaseModel

	ProjectID    uint            `gorm:"not null;index" json:"projectId"`
	Title        string          `gorm:"not null" json:"title"`
	Description  *string         `json:"description"`
	Status       string          `gorm:"not null;default:Open" json:"status"`
	Priority     string          `gorm:"not null;default:medium" json:"priority"`
	DueDate      *datatypes.Date `json:"dueDate"`
	AssignedToID *uint           `gorm:"index" json:"assignedToId"`
	CreatedByID  *uint           `gorm:"index" json:"createdById"`

	// Relationships
	Project    *ProjectSummary `gorm:"foreignKey:ProjectID;-:migration" json:"project,omitempty"`
	AssignedTo *UserSummary    `gorm:"foreignKey:AssignedToID;-:migration" json:"assignedTo,omitempty"`
	CreatedBy  *UserSummary    `gorm:"foreignKey:CreatedByID;-:migration" json:"createdBy,omitempty"`
}

// ProjectSummary is the project shape embedded in task payloads.
type ProjectSummary struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

func (ProjectSummary) TableName() string {
	return "projects"
}
