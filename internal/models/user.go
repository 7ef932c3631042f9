package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Password  string `gorm:"not null"` // bcrypt hash
	FirstName string
	LastName  string
	Role      string `gorm:"not null;index"` // admin, coordinator, client, third_party, agency
	ContactID *uint  `gorm:"index"`          // set when the account was created to match a pre-existing contact
	Contact   *Contact
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact is an address-book entry that may exist before (or without) a user
// account. Participations and agency assignments can reference contacts
// directly, which is why users carry an optional contact link.
type Contact struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"index"`
	FirstName string
	LastName  string
	Company   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
