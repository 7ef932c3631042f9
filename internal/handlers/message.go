package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/httpx"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

type MessageHandler struct {
	DB   *gorm.DB
	Gate *access.Gateway
}

func NewMessageHandler(db *gorm.DB, gate *access.Gateway) *MessageHandler {
	return &MessageHandler{DB: db, Gate: gate}
}

// List: GET /messages?exchange_id= – one exchange's thread. exchange_id is
// mandatory here; cross-exchange message feeds are the dashboard's job.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	exchangeID, ok := parseExchangeIDParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_exchange_id", nil)
		return
	}
	allowed, err := h.Gate.CheckPermission(r.Context(), sub, exchangeID, access.PermViewMessages)
	if err != nil {
		log.Printf("check view_messages on exchange %d: %v", exchangeID, err)
		httpx.InternalError(w)
		return
	}
	if !allowed {
		httpx.Forbidden(w)
		return
	}
	var msgs []models.Message
	if err := h.DB.WithContext(r.Context()).
		Where("exchange_id = ?", exchangeID).
		Order("created_at asc, id asc").
		Find(&msgs).Error; err != nil {
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": msgs, "total": len(msgs)})
}

// Create: POST /messages – requires send_messages on the parent exchange.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		ExchangeID uint   `json:"exchange_id"`
		Body       string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.ExchangeID == 0 || req.Body == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"exchange_id": "required", "body": "required"})
		return
	}
	allowed, err := h.Gate.CheckPermission(r.Context(), sub, req.ExchangeID, access.PermSendMessages)
	if err != nil {
		log.Printf("check send_messages on exchange %d: %v", req.ExchangeID, err)
		httpx.InternalError(w)
		return
	}
	if !allowed {
		httpx.Forbidden(w)
		return
	}
	msg := models.Message{
		ExchangeID: req.ExchangeID,
		SenderID:   sub.UserID,
		Body:       req.Body,
	}
	if err := h.DB.WithContext(r.Context()).Create(&msg).Error; err != nil {
		log.Printf("create message: %v", err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": msg.ID})
}
