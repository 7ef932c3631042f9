package models

import "time"

// Participation grants one identity a role and an optional permission
// override on one exchange. Exactly one of UserID/ContactID is set. Rows are
// deactivated via IsActive, never deleted, so exchange history stays intact.
type Participation struct {
	ID         uint  `gorm:"primaryKey"`
	ExchangeID uint  `gorm:"index;not null"`
	UserID     *uint `gorm:"index"`
	ContactID  *uint `gorm:"index"`
	Role       string
	IsActive   bool `gorm:"index;default:true"`
	// PermissionOverride is stored as JSON: either an array of permission
	// names or a name->bool map. Empty means the role's defaults apply.
	PermissionOverride string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AgencyAssignment delegates visibility transitively: the agency contact
// inherits access to every exchange its assigned third-party contacts
// participate in. Revoking means flipping IsActive off.
type AgencyAssignment struct {
	ID                  uint `gorm:"primaryKey"`
	AgencyContactID     uint `gorm:"index;not null"`
	ThirdPartyContactID uint `gorm:"index;not null"`
	IsActive            bool `gorm:"index;default:true"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
