package models

import "time"

// Task is a to-do scoped to one exchange (deadline work, document chasing).
type Task struct {
	ID           uint   `gorm:"primaryKey"`
	ExchangeID   uint   `gorm:"index;not null"`
	Title        string `gorm:"not null"`
	Description  string
	Status       string `gorm:"index"` // open, in_progress, done, cancelled
	DueDate      time.Time
	AssignedToID *uint `gorm:"index"` // user id, optional
	CreatedByID  uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
