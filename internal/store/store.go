// Package store implements the access engine's query surface on gorm.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/access"
	"github.com/diewo77/exchange-app/internal/models"
)

// Store answers access.Store queries against the database. Failures are
// returned verbatim; denial is never synthesized from an error.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// orderColumns whitelists the orderings callers may request. Unknown values
// fall back to newest-first.
var orderColumns = map[string]string{
	"":         "id desc",
	"created":  "created_at desc",
	"deadline": "completion_deadline asc",
	"status":   "status asc, id desc",
}

// filterColumns whitelists the free-form equality filters.
var filterColumns = map[string]bool{
	"status":         true,
	"number":         true,
	"coordinator_id": true,
	"client_id":      true,
}

// FindExchanges runs the visibility predicate as a single query: owner column
// OR active-participation subquery, so the counted total matches the page
// exactly. The total is taken before any limit is applied.
func (s *Store) FindExchanges(ctx context.Context, pred access.ExchangePredicate, opts access.ListOptions) (access.AccessResult, error) {
	if !pred.All && len(pred.OwnerIDs) == 0 &&
		len(pred.ParticipantUserIDs) == 0 && len(pred.ParticipantContactIDs) == 0 {
		// Nothing can match; skip the round trip.
		return access.AccessResult{IDs: []uint{}}, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Exchange{})
	if !pred.All {
		cond := s.db.Where("1 = 0")
		if pred.OwnerField != "" && len(pred.OwnerIDs) > 0 {
			cond = cond.Or(pred.OwnerField+" IN ?", pred.OwnerIDs)
		}
		if len(pred.ParticipantUserIDs) > 0 || len(pred.ParticipantContactIDs) > 0 {
			// User and contact ids are separate sequences; each list is
			// matched only against its own column.
			match := s.db.Where("1 = 0")
			if len(pred.ParticipantUserIDs) > 0 {
				match = match.Or("user_id IN ?", pred.ParticipantUserIDs)
			}
			if len(pred.ParticipantContactIDs) > 0 {
				match = match.Or("contact_id IN ?", pred.ParticipantContactIDs)
			}
			sub := s.db.Model(&models.Participation{}).
				Select("exchange_id").
				Where("is_active = ?", true).
				Where(match)
			cond = cond.Or("exchanges.id IN (?)", sub)
		}
		q = q.Where(cond)
	}
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}
	for col, val := range opts.Filters {
		if filterColumns[col] {
			q = q.Where(col+" = ?", val)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return access.AccessResult{}, err
	}

	order, ok := orderColumns[opts.OrderBy]
	if !ok {
		order = orderColumns[""]
	}
	page := q.Order(order)
	if opts.Limit > 0 {
		page = page.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		page = page.Offset(opts.Offset)
	}
	ids := []uint{}
	if err := page.Pluck("exchanges.id", &ids).Error; err != nil {
		return access.AccessResult{}, err
	}
	return access.AccessResult{IDs: ids, Total: total}, nil
}

// identityMatch builds the participation identity clause: the user id against
// user_id only, the contact id against contact_id only. contactID 0 means the
// subject has no linked contact.
func (s *Store) identityMatch(userID, contactID uint) *gorm.DB {
	match := s.db.Where("1 = 0")
	if userID != 0 {
		match = match.Or("user_id = ?", userID)
	}
	if contactID != 0 {
		match = match.Or("contact_id = ?", contactID)
	}
	return match
}

// FirstActiveParticipation matches each identity against its own column in
// one query. Lowest participation id first: the tie-break when both of a
// subject's identities match different rows.
func (s *Store) FirstActiveParticipation(ctx context.Context, userID, contactID uint, exchangeID uint) (*access.ParticipationRecord, error) {
	if userID == 0 && contactID == 0 {
		return nil, nil
	}
	var row models.Participation
	err := s.db.WithContext(ctx).
		Where("exchange_id = ? AND is_active = ?", exchangeID, true).
		Where(s.identityMatch(userID, contactID)).
		Order("id asc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &access.ParticipationRecord{
		ID:          row.ID,
		ExchangeID:  row.ExchangeID,
		Role:        access.Role(row.Role),
		RawOverride: row.PermissionOverride,
	}, nil
}

func (s *Store) HasActiveParticipation(ctx context.Context, userID, contactID uint, exchangeID uint) (bool, error) {
	if userID == 0 && contactID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Participation{}).
		Where("exchange_id = ? AND is_active = ?", exchangeID, true).
		Where(s.identityMatch(userID, contactID)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ActiveAssignedContactIDs(ctx context.Context, agencyContactID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.AgencyAssignment{}).
		Where("agency_contact_id = ? AND is_active = ?", agencyContactID, true).
		Pluck("third_party_contact_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) GetExchangeRef(ctx context.Context, exchangeID uint) (*access.ExchangeRef, error) {
	var ex models.Exchange
	err := s.db.WithContext(ctx).
		Select("id", "coordinator_id", "client_id").
		First(&ex, exchangeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &access.ExchangeRef{ID: ex.ID, CoordinatorID: ex.CoordinatorID, ClientID: ex.ClientID}, nil
}
