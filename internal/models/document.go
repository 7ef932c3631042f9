package models

import "time"

// Document is file metadata attached to one exchange. The binary itself lives
// on disk/object storage under Path; only the metadata is queried here.
type Document struct {
	ID           uint   `gorm:"primaryKey"`
	ExchangeID   uint   `gorm:"index;not null"`
	Name         string `gorm:"not null"`
	Path         string
	Category     string // contract, settlement, identification, misc
	SizeBytes    int64
	UploadedByID uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
