package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/models"
)

func setupServerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Contact{}, &models.User{}, &models.Exchange{}, &models.Participation{}, &models.AgencyAssignment{}, &models.Task{}, &models.Document{}, &models.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestHealthz(t *testing.T) {
	db := setupServerDB(t)
	h := New(db)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	db := setupServerDB(t)
	h := New(db)
	for _, path := range []string{"/exchanges", "/tasks", "/documents", "/messages", "/dashboard"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without session: expected 401 got %d", path, w.Code)
		}
	}
}

// login → list exchanges → read dashboard, all through the cookie the server
// itself issued.
func TestLoginAndListFlow(t *testing.T) {
	db := setupServerDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	coord := models.User{Email: "coord@test", Password: string(hash), Role: "coordinator"}
	if err := db.Create(&coord).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	ex := models.Exchange{Number: "EX-1", Status: "open", CoordinatorID: coord.ID, ClientID: 500,
		IdentificationDeadline: time.Now().AddDate(0, 0, 20), CompletionDeadline: time.Now().AddDate(0, 0, 150)}
	if err := db.Create(&ex).Error; err != nil {
		t.Fatalf("seed exchange: %v", err)
	}

	h := New(db)

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"coord@test","password":"secret123"}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}

	r = httptest.NewRequest(http.MethodGet, "/exchanges", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []models.Exchange `json:"items"`
		Total int64             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0].Number != "EX-1" {
		t.Errorf("list = %v (total %d), want EX-1", resp.Items, resp.Total)
	}

	r = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var sum struct {
		StatusCounts map[string]int64 `json:"status_counts"`
		Restricted   bool             `json:"restricted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if sum.StatusCounts["open"] != 1 || !sum.Restricted {
		t.Errorf("dashboard = %+v, want one open exchange, restricted view", sum)
	}
}

func TestSessionForDeletedUserRejected(t *testing.T) {
	db := setupServerDB(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	u := models.User{Email: "gone@test", Password: string(hash), Role: "client"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := New(db)

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"gone@test","password":"secret123"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	cookies := w.Result().Cookies()

	if err := db.Delete(&models.User{}, u.ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/exchanges", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("stale session: expected 401 got %d", w.Code)
	}
}
