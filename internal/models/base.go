package models

import "time"

// BaseModel is gorm.Model without DeletedAt; rows are removed for real.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
