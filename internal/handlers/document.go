package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/httpx"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

type DocumentHandler struct {
	DB   *gorm.DB
	Gate *access.Gateway
}

func NewDocumentHandler(db *gorm.DB, gate *access.Gateway) *DocumentHandler {
	return &DocumentHandler{DB: db, Gate: gate}
}

// List: GET /documents?exchange_id= – document metadata on one exchange, or
// across every visible exchange when no id is given.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	q := h.DB.WithContext(r.Context()).Model(&models.Document{})
	if exchangeID, ok := parseExchangeIDParam(r); ok {
		allowed, err := h.Gate.CheckPermission(r.Context(), sub, exchangeID, access.PermViewDocuments)
		if err != nil {
			log.Printf("check view_documents on exchange %d: %v", exchangeID, err)
			httpx.InternalError(w)
			return
		}
		if !allowed {
			httpx.Forbidden(w)
			return
		}
		q = q.Where("exchange_id = ?", exchangeID)
	} else {
		scoped, done := scopedChildQuery(w, r, h.Gate, sub, q)
		if done {
			return
		}
		q = scoped
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.InternalError(w)
		return
	}
	var docs []models.Document
	if err := q.Order("created_at desc, id desc").Find(&docs).Error; err != nil {
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": docs, "total": total})
}

// Create: POST /documents – registers document metadata; requires
// upload_documents on the parent exchange.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		ExchangeID uint   `json:"exchange_id"`
		Name       string `json:"name"`
		Path       string `json:"path"`
		Category   string `json:"category"`
		SizeBytes  int64  `json:"size_bytes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ExchangeID == 0 || req.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"exchange_id": "required", "name": "required"})
		return
	}
	allowed, err := h.Gate.CheckPermission(r.Context(), sub, req.ExchangeID, access.PermUploadDocuments)
	if err != nil {
		log.Printf("check upload_documents on exchange %d: %v", req.ExchangeID, err)
		httpx.InternalError(w)
		return
	}
	if !allowed {
		httpx.Forbidden(w)
		return
	}
	doc := models.Document{
		ExchangeID:   req.ExchangeID,
		Name:         req.Name,
		Path:         req.Path,
		Category:     req.Category,
		SizeBytes:    req.SizeBytes,
		UploadedByID: sub.UserID,
	}
	if err := h.DB.WithContext(r.Context()).Create(&doc).Error; err != nil {
		log.Printf("create document: %v", err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": doc.ID, "name": doc.Name})
}

// Delete: POST /documents/delete – requires delete_documents, which no role
// holds by default below admin/coordinator.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	var doc models.Document
	if err := h.DB.WithContext(r.Context()).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.InternalError(w)
		return
	}
	allowed, err := h.Gate.CheckPermission(r.Context(), sub, doc.ExchangeID, access.PermDeleteDocuments)
	if err != nil {
		httpx.InternalError(w)
		return
	}
	if !allowed {
		httpx.Forbidden(w)
		return
	}
	if err := h.DB.WithContext(r.Context()).Delete(&doc).Error; err != nil {
		log.Printf("delete document %d: %v", id, err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
