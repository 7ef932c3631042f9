package models

import "time"

// Exchange is the top-level record all visibility is computed against: one
// 1031 exchange run by a coordinator on behalf of a client. ClientID holds
// the client's user id, or their contact id when the exchange was opened
// before the client had an account.
type Exchange struct {
	ID                     uint   `gorm:"primaryKey"`
	Number                 string `gorm:"uniqueIndex"`
	Status                 string `gorm:"index"` // open, pending_identification, pending_closing, completed, cancelled
	CoordinatorID          uint   `gorm:"index;not null"`
	ClientID               uint   `gorm:"index;not null"`
	RelinquishedValue      float64
	ReplacementValue       float64
	IdentificationDeadline time.Time // 45-day deadline
	CompletionDeadline     time.Time // 180-day deadline
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
