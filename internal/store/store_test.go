package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}, &models.Exchange{}, &models.Participation{}, &models.AgencyAssignment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func uintPtr(v uint) *uint { return &v }

func seedExchange(t *testing.T, db *gorm.DB, coordinatorID, clientID uint, status string) models.Exchange {
	t.Helper()
	ex := models.Exchange{
		CoordinatorID:          coordinatorID,
		ClientID:               clientID,
		Status:                 status,
		Number:                 fmt.Sprintf("EX-%d-%d-%s", coordinatorID, clientID, time.Now().Format("150405.000000000")),
		IdentificationDeadline: time.Now().AddDate(0, 0, 45),
		CompletionDeadline:     time.Now().AddDate(0, 0, 180),
	}
	if err := db.Create(&ex).Error; err != nil {
		t.Fatalf("seed exchange: %v", err)
	}
	return ex
}

func TestFindExchanges_OwnerOrParticipationSingleQuery(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	owned := seedExchange(t, db, 10, 20, "open")
	invited := seedExchange(t, db, 11, 21, "open")
	other := seedExchange(t, db, 12, 22, "open")
	if err := db.Create(&models.Participation{ExchangeID: invited.ID, UserID: uintPtr(10), IsActive: true}).Error; err != nil {
		t.Fatalf("seed participation: %v", err)
	}
	// Inactive participation must not grant anything.
	if err := db.Create(&models.Participation{ExchangeID: other.ID, UserID: uintPtr(10), IsActive: false}).Error; err != nil {
		t.Fatalf("seed participation: %v", err)
	}

	res, err := s.FindExchanges(ctx, access.ExchangePredicate{
		OwnerField:         access.OwnerCoordinator,
		OwnerIDs:           []uint{10},
		ParticipantUserIDs: []uint{10},
	}, access.ListOptions{})
	if err != nil {
		t.Fatalf("FindExchanges: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
	if !res.Contains(owned.ID) || !res.Contains(invited.ID) {
		t.Errorf("IDs = %v, want both %d and %d", res.IDs, owned.ID, invited.ID)
	}
	if res.Contains(other.ID) {
		t.Errorf("inactive participation leaked exchange %d", other.ID)
	}
}

func TestFindExchanges_CountDecoupledFromLimit(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedExchange(t, db, 10, uint(20+i), "open")
	}
	res, err := s.FindExchanges(ctx, access.ExchangePredicate{
		OwnerField: access.OwnerCoordinator,
		OwnerIDs:   []uint{10},
	}, access.ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("FindExchanges: %v", err)
	}
	if len(res.IDs) != 1 {
		t.Errorf("len(IDs) = %d, want 1", len(res.IDs))
	}
	if res.Total != 5 {
		t.Errorf("Total = %d, want 5", res.Total)
	}
}

func TestFindExchanges_EmptyPredicateSkipsQuery(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	seedExchange(t, db, 10, 20, "open")

	res, err := s.FindExchanges(context.Background(), access.ExchangePredicate{}, access.ListOptions{})
	if err != nil {
		t.Fatalf("FindExchanges: %v", err)
	}
	if len(res.IDs) != 0 || res.Total != 0 {
		t.Errorf("zero predicate matched %v (total %d)", res.IDs, res.Total)
	}
}

func TestFindExchanges_StatusAndFilters(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	open := seedExchange(t, db, 10, 20, "open")
	seedExchange(t, db, 10, 21, "completed")

	res, err := s.FindExchanges(ctx, access.ExchangePredicate{All: true}, access.ListOptions{Status: "open"})
	if err != nil {
		t.Fatalf("FindExchanges: %v", err)
	}
	if res.Total != 1 || !res.Contains(open.ID) {
		t.Errorf("status filter: IDs = %v total = %d", res.IDs, res.Total)
	}

	res, err = s.FindExchanges(ctx, access.ExchangePredicate{All: true}, access.ListOptions{
		Filters: map[string]any{"client_id": 21, "password": "ignored"},
	})
	if err != nil {
		t.Fatalf("FindExchanges: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("whitelisted filter: total = %d, want 1", res.Total)
	}
}

func TestFirstActiveParticipation_TieBreakIsLowestID(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	ex := seedExchange(t, db, 10, 20, "open")
	first := models.Participation{ExchangeID: ex.ID, UserID: uintPtr(4), IsActive: true, PermissionOverride: `["view_tasks"]`}
	second := models.Participation{ExchangeID: ex.ID, ContactID: uintPtr(55), IsActive: true, PermissionOverride: `["delete"]`}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Both identities match; the row created first (lowest id) must win.
	got, err := s.FirstActiveParticipation(ctx, 4, 55, ex.ID)
	if err != nil {
		t.Fatalf("FirstActiveParticipation: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("got %+v, want participation %d", got, first.ID)
	}
	if got.RawOverride != `["view_tasks"]` {
		t.Errorf("RawOverride = %q", got.RawOverride)
	}
}

func TestFirstActiveParticipation_SkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	ex := seedExchange(t, db, 10, 20, "open")
	if err := db.Create(&models.Participation{ExchangeID: ex.ID, UserID: uintPtr(4), IsActive: false}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := s.FirstActiveParticipation(ctx, 4, 0, ex.ID)
	if err != nil {
		t.Fatalf("FirstActiveParticipation: %v", err)
	}
	if got != nil {
		t.Errorf("inactive participation returned: %+v", got)
	}

	ok, err := s.HasActiveParticipation(ctx, 4, 0, ex.ID)
	if err != nil {
		t.Fatalf("HasActiveParticipation: %v", err)
	}
	if ok {
		t.Error("HasActiveParticipation should ignore inactive rows")
	}
}

func TestParticipationIdentitiesStayOnTheirColumns(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()
	g := access.NewGateway(s)

	// Users and contacts are separate sequences, so a subject's contact id
	// can numerically equal an unrelated user's id. That collision must never
	// grant anything.
	ex := seedExchange(t, db, 10, 999, "open")
	if err := db.Create(&models.Participation{ExchangeID: ex.ID, UserID: uintPtr(9), IsActive: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&models.Participation{ExchangeID: ex.ID, ContactID: uintPtr(5), IsActive: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Subject is user 5 with linked contact 9: neither row is theirs.
	ok, err := s.HasActiveParticipation(ctx, 5, 9, ex.ID)
	if err != nil {
		t.Fatalf("HasActiveParticipation: %v", err)
	}
	if ok {
		t.Error("contact id matched an unrelated user_id row (or user id a contact_id row)")
	}
	sub := access.Subject{UserID: 5, ContactID: 9, Role: access.RoleClient}
	visible, err := g.CanAccess(ctx, sub, ex.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if visible {
		t.Error("subject gained access through a cross-namespace id collision")
	}
	res, err := g.AccessibleExchanges(ctx, sub, access.ListOptions{})
	if err != nil {
		t.Fatalf("AccessibleExchanges: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("visibility set leaked %v", res.IDs)
	}

	// The genuine owners of those rows do match.
	if ok, err := s.HasActiveParticipation(ctx, 9, 0, ex.ID); err != nil || !ok {
		t.Errorf("user 9 should match its own row, got (%v, %v)", ok, err)
	}
	if ok, err := s.HasActiveParticipation(ctx, 77, 5, ex.ID); err != nil || !ok {
		t.Errorf("contact 5 should match its own row, got (%v, %v)", ok, err)
	}
}

func TestAgencyLookupsAndRevocation(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()
	g := access.NewGateway(s)

	ex := seedExchange(t, db, 10, 20, "open")
	if err := db.Create(&models.Participation{ExchangeID: ex.ID, ContactID: uintPtr(40), IsActive: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	assignment := models.AgencyAssignment{AgencyContactID: 60, ThirdPartyContactID: 40, IsActive: true}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	agency := access.Subject{UserID: 7, ContactID: 60, Role: access.RoleAgency}
	res, err := g.AccessibleExchanges(ctx, agency, access.ListOptions{})
	if err != nil {
		t.Fatalf("AccessibleExchanges: %v", err)
	}
	if res.Total != 1 || !res.Contains(ex.ID) {
		t.Fatalf("agency should see exchange %d, got %v", ex.ID, res.IDs)
	}

	// Revoke and re-ask: no caching window, the very next call must deny.
	if err := db.Model(&assignment).Update("is_active", false).Error; err != nil {
		t.Fatalf("revoke: %v", err)
	}
	res, err = g.AccessibleExchanges(ctx, agency, access.ListOptions{})
	if err != nil {
		t.Fatalf("AccessibleExchanges: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("revoked assignment still grants %v", res.IDs)
	}
}

func TestGetExchangeRef(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	ctx := context.Background()

	ex := seedExchange(t, db, 10, 20, "open")
	ref, err := s.GetExchangeRef(ctx, ex.ID)
	if err != nil {
		t.Fatalf("GetExchangeRef: %v", err)
	}
	if ref == nil || ref.CoordinatorID != 10 || ref.ClientID != 20 {
		t.Errorf("ref = %+v", ref)
	}

	ref, err = s.GetExchangeRef(ctx, 9999)
	if err != nil {
		t.Fatalf("GetExchangeRef missing: %v", err)
	}
	if ref != nil {
		t.Errorf("missing exchange returned ref %+v", ref)
	}
}
