package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/httpx"
	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

type TaskHandler struct {
	DB   *gorm.DB
	Gate *access.Gateway
}

func NewTaskHandler(db *gorm.DB, gate *access.Gateway) *TaskHandler {
	return &TaskHandler{DB: db, Gate: gate}
}

// scopedChildQuery restricts a child-table query to the caller's visible
// exchanges. done=true means the response was already written: either an
// error, or the empty short-circuit when nothing is visible (no child query
// is issued in that case).
func scopedChildQuery(w http.ResponseWriter, r *http.Request, gate *access.Gateway, sub access.Subject, q *gorm.DB) (*gorm.DB, bool) {
	ids, restricted, err := gate.VisibleExchangeIDs(r.Context(), sub)
	if err != nil {
		log.Printf("visible exchanges for user %d: %v", sub.UserID, err)
		httpx.InternalError(w)
		return nil, true
	}
	if !restricted {
		return q, false
	}
	if len(ids) == 0 {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []any{}, "total": 0})
		return nil, true
	}
	return q.Where("exchange_id IN ?", ids), false
}

// List: GET /tasks?exchange_id= – tasks on one exchange, or across every
// visible exchange when no id is given.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	q := h.DB.WithContext(r.Context()).Model(&models.Task{})
	if exchangeID, ok := parseExchangeIDParam(r); ok {
		allowed, err := h.Gate.CheckPermission(r.Context(), sub, exchangeID, access.PermViewTasks)
		if err != nil {
			log.Printf("check view_tasks on exchange %d: %v", exchangeID, err)
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
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.InternalError(w)
		return
	}
	var tasks []models.Task
	if err := q.Order("due_date asc, id asc").Find(&tasks).Error; err != nil {
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": tasks, "total": total})
}

// Create: POST /tasks – requires create_tasks on the parent exchange.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFrom(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		ExchangeID  uint   `json:"exchange_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"` // 2006-01-02
		AssignedTo  *uint  `json:"assigned_to_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ExchangeID == 0 || req.Title == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"exchange_id": "required", "title": "required"})
		return
	}
	allowed, err := h.Gate.CheckPermission(r.Context(), sub, req.ExchangeID, access.PermCreateTasks)
	if err != nil {
		log.Printf("check create_tasks on exchange %d: %v", req.ExchangeID, err)
		httpx.InternalError(w)
		return
	}
	if !allowed {
		httpx.Forbidden(w)
		return
	}
	if req.AssignedTo != nil {
		allowed, err = h.Gate.CheckPermission(r.Context(), sub, req.ExchangeID, access.PermAssignTasks)
		if err != nil {
			httpx.InternalError(w)
			return
		}
		if !allowed {
			httpx.Forbidden(w)
			return
		}
	}
	due := time.Now().AddDate(0, 0, 7)
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_due_date", nil)
			return
		}
		due = parsed
	}
	task := models.Task{
		ExchangeID:   req.ExchangeID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       "open",
		DueDate:      due,
		AssignedToID: req.AssignedTo,
		CreatedByID:  sub.UserID,
	}
	if err := h.DB.WithContext(r.Context()).Create(&task).Error; err != nil {
		log.Printf("create task: %v", err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": task.ID, "status": task.Status})
}

func parseExchangeIDParam(r *http.Request) (uint, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get("exchange_id"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}
