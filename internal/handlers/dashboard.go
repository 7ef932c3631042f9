package handlers

import (
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/httpx"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/services"
)

type DashboardHandler struct {
	DB      *gorm.DB
	Gate    *access.Gateway
	Service *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB, gate *access.Gateway) *DashboardHandler {
	return &DashboardHandler{DB: db, Gate: gate, Service: services.NewDashboardService(db)}
}

// Summary: GET /dashboard – the visibility set is resolved once here and
// handed to the service; the service never re-derives it.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	ids, restricted, err := h.Gate.VisibleExchangeIDs(r.Context(), sub)
	if err != nil {
		log.Printf("visible exchanges for user %d: %v", sub.UserID, err)
		httpx.InternalError(w)
		return
	}
	sum, err := h.Service.Summary(r.Context(), ids, restricted)
	if err != nil {
		log.Printf("dashboard summary for user %d: %v", sub.UserID, err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}
