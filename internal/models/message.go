package models

import "time"

// Message is a note on an exchange's conversation thread.
type Message struct {
	ID         uint   `gorm:"primaryKey"`
	ExchangeID uint   `gorm:"index;not null"`
	SenderID   uint   `gorm:"not null"` // user id
	Body       string `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
