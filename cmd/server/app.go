package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/server"
)

// NewApp bundles the API routes into one handler. Kept separate from main so
// end-to-end tests can mount the full application against a test database.
func NewApp(dbConn *gorm.DB) http.Handler {
	return server.New(dbConn)
}
