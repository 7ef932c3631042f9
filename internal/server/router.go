package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/auth"
	"github.com/diewo77/exchange-app/httpx"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/handlers"
	"github.com/diewo77/exchange-app/internal/models"
	"github.com/diewo77/exchange-app/internal/store"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth checks the session user still exists before any handler runs.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	gate := access.NewGateway(store.New(db))

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	eh := handlers.NewExchangeHandler(db, gate)
	mux.Handle("/exchanges", protected(listCreate(eh.List, eh.Create)))
	mux.Handle("/exchanges/detail", protected(http.HandlerFunc(eh.Detail)))

	th := handlers.NewTaskHandler(db, gate)
	mux.Handle("/tasks", protected(listCreate(th.List, th.Create)))

	dh := handlers.NewDocumentHandler(db, gate)
	mux.Handle("/documents", protected(listCreate(dh.List, dh.Create)))
	mux.Handle("/documents/delete", protected(http.HandlerFunc(dh.Delete)))

	mh := handlers.NewMessageHandler(db, gate)
	mux.Handle("/messages", protected(listCreate(mh.List, mh.Create)))

	dash := handlers.NewDashboardHandler(db, gate)
	mux.Handle("/dashboard", protected(http.HandlerFunc(dash.Summary)))

	return withRecover(withLogging(mux))
}

func protected(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

// listCreate dispatches GET to list and POST to create.
func listCreate(list, create http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
