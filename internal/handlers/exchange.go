package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/httpx"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

type ExchangeHandler struct {
	DB   *gorm.DB
	Gate *access.Gateway
}

func NewExchangeHandler(db *gorm.DB, gate *access.Gateway) *ExchangeHandler {
	return &ExchangeHandler{DB: db, Gate: gate}
}

func parseListOptions(r *http.Request) access.ListOptions {
	opts := access.ListOptions{Limit: 50, OrderBy: r.URL.Query().Get("order")}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			opts.Offset = (n - 1) * opts.Limit
		}
	}
	opts.Status = r.URL.Query().Get("status")
	return opts
}

func parseIDParam(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// List: GET /exchanges – the caller's visible exchanges. total always counts
// the full visible set, even when limit caps the page.
func (h *ExchangeHandler) List(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	opts := parseListOptions(r)
	res, err := h.Gate.AccessibleExchanges(r.Context(), sub, opts)
	if err != nil {
		log.Printf("list exchanges: %v", err)
		httpx.InternalError(w)
		return
	}
	items := []models.Exchange{}
	if len(res.IDs) > 0 {
		if err := h.DB.WithContext(r.Context()).Where("id IN ?", res.IDs).Find(&items).Error; err != nil {
			log.Printf("load exchanges: %v", err)
			httpx.InternalError(w)
			return
		}
		// keep the store's ordering
		byID := make(map[uint]models.Exchange, len(items))
		for _, ex := range items {
			byID[ex.ID] = ex
		}
		items = items[:0]
		for _, id := range res.IDs {
			if ex, ok := byID[id]; ok {
				items = append(items, ex)
			}
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"total":  res.Total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// Detail: GET /exchanges/detail?id= – one exchange plus the caller's
// permission map for it.
func (h *ExchangeHandler) Detail(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := parseIDParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	allowed, err := h.Gate.CanAccess(r.Context(), sub, id)
	if err != nil {
		log.Printf("can access exchange %d: %v", id, err)
		httpx.InternalError(w)
		return
	}
	if !allowed {
		httpx.Forbidden(w)
		return
	}
	var ex models.Exchange
	if err := h.DB.WithContext(r.Context()).First(&ex, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.InternalError(w)
		return
	}
	perms, err := h.Gate.PermissionMap(r.Context(), sub, id)
	if err != nil {
		log.Printf("permission map for exchange %d: %v", id, err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"exchange": ex, "permissions": perms})
}

// Create: POST /exchanges – coordinators open exchanges for their clients;
// admins may open them for any coordinator.
func (h *ExchangeHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if sub.Role != access.RoleCoordinator && sub.Role != access.RoleAdmin {
		httpx.Forbidden(w)
		return
	}
	var req struct {
		Number            string  `json:"number"`
		ClientID          uint    `json:"client_id"`
		CoordinatorID     uint    `json:"coordinator_id"`
		RelinquishedValue float64 `json:"relinquished_value"`
		SaleDate          string  `json:"sale_date"` // RFC 3339 date; deadlines derive from it
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Number == "" || req.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"number": "required", "client_id": "required"})
		return
	}
	coordinatorID := sub.UserID
	if sub.Role == access.RoleAdmin && req.CoordinatorID != 0 {
		coordinatorID = req.CoordinatorID
	}
	saleDate := time.Now()
	if req.SaleDate != "" {
		parsed, err := time.Parse("2006-01-02", req.SaleDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_sale_date", nil)
			return
		}
		saleDate = parsed
	}
	ex := models.Exchange{
		Number:                 req.Number,
		Status:                 "open",
		CoordinatorID:          coordinatorID,
		ClientID:               req.ClientID,
		RelinquishedValue:      req.RelinquishedValue,
		IdentificationDeadline: saleDate.AddDate(0, 0, 45),
		CompletionDeadline:     saleDate.AddDate(0, 0, 180),
	}
	if err := h.DB.WithContext(r.Context()).Create(&ex).Error; err != nil {
		log.Printf("create exchange: %v", err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": ex.ID, "number": ex.Number, "status": ex.Status})
}
