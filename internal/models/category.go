package models

type Category struct {
	BaseModel

	Name      string `gorm:"not null" json:"name"`
	ProjectID uint   `gorm:"not null;index" json:"projectId"`
}
