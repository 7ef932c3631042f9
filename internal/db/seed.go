package db

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/models"
)

// Seed inserts a minimal development data set: one admin, one coordinator,
// one client (linked to a pre-existing contact), and one sample exchange.
// Idempotent: existing rows are left alone.
func Seed(db *gorm.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return
	}

	contact := models.Contact{Email: "client@example.com", FirstName: "Dana", LastName: "Mills"}
	var existingContact models.Contact
	if err := db.Where("email = ?", contact.Email).First(&existingContact).Error; err == gorm.ErrRecordNotFound {
		db.Create(&contact)
	} else {
		contact = existingContact
	}

	users := []models.User{
		{Email: "admin@example.com", Password: string(hash), FirstName: "Site", LastName: "Admin", Role: "admin"},
		{Email: "coordinator@example.com", Password: string(hash), FirstName: "Casey", LastName: "Ryder", Role: "coordinator"},
		{Email: "client@example.com", Password: string(hash), FirstName: "Dana", LastName: "Mills", Role: "client", ContactID: &contact.ID},
	}
	for i := range users {
		var existing models.User
		if err := db.Where("email = ?", users[i].Email).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&users[i])
		} else {
			users[i] = existing
		}
	}

	var exchangeCount int64
	db.Model(&models.Exchange{}).Count(&exchangeCount)
	if exchangeCount == 0 {
		now := time.Now()
		db.Create(&models.Exchange{
			Number:                 "EX-1001",
			Status:                 "open",
			CoordinatorID:          users[1].ID,
			ClientID:               contact.ID,
			RelinquishedValue:      450000,
			IdentificationDeadline: now.AddDate(0, 0, 45),
			CompletionDeadline:     now.AddDate(0, 0, 180),
		})
	}
}
