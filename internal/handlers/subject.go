package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/auth"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

// subjectFrom loads the session user and converts it into an access Subject.
// ok is false when there is no valid session user; handlers answer that with
// a 401 before the engine is ever consulted, so the engine's ErrMissingUser
// only ever signals a programming error.
func subjectFrom(r *http.Request, db *gorm.DB) (access.Subject, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		return access.Subject{}, false
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		return access.Subject{}, false
	}
	sub := access.Subject{UserID: user.ID, Role: access.Role(user.Role)}
	if user.ContactID != nil {
		sub.ContactID = *user.ContactID
	}
	return sub, true
}
