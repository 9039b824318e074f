package models

type Project struct {
	BaseModel

	Title       string  `gorm:"size:100;not null" json:"title"`
	Description *string `json:"description"`
	Status      string  `gorm:"not null;default:Open" json:"status"`
	ImageURL    *string `json:"imageUrl"`
	ImageKey    *string `json:"-"`
	AssignToID  uint    `gorm:"not null;index" json:"assignToId"`

	// Relationships. Summary types share their table with the full model and
	// are excluded from migration.
	AssignTo   *UserSummary `gorm:"foreignKey:AssignToID;-:migration" json:"assignTo,omitempty"`
	Tasks      []Task       `gorm:"foreignKey:ProjectID" json:"tasks"`
	Categories []Category   `gorm:"foreignKey:ProjectID" json:"categories"`
}
