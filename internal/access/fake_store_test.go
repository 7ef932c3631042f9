package access_test

import (
	"context"
	"sort"

	"github.com/diewo77/exchange-app/internal/access"
)

// fakeStore is an in-memory Store for engine tests. Query semantics mirror
// the SQL-backed store: one combined owner-OR-participation predicate, totals
// counted before the limit, and participation identities matched strictly
// against their own column (user ids on user_id, contact ids on contact_id).
type fakeStore struct {
	exchanges      []fakeExchange
	participations []fakeParticipation
	assignments    []fakeAssignment

	// failWith, when set, makes every lookup fail. Used to verify that store
	// outages propagate instead of turning into denials.
	failWith error
}

type fakeExchange struct {
	id            uint
	coordinatorID uint
	clientID      uint
	status        string
}

type fakeParticipation struct {
	id         uint
	exchangeID uint
	userID     uint // 0 = column null
	contactID  uint // 0 = column null
	active     bool
	override   string
}

type fakeAssignment struct {
	agencyContactID     uint
	thirdPartyContactID uint
	active              bool
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) matchesParticipant(exchangeID uint, userIDs, contactIDs []uint) bool {
	for _, p := range f.participations {
		if !p.active || p.exchangeID != exchangeID {
			continue
		}
		if (p.userID != 0 && containsID(userIDs, p.userID)) ||
			(p.contactID != 0 && containsID(contactIDs, p.contactID)) {
			return true
		}
	}
	return false
}

func (f *fakeStore) FindExchanges(_ context.Context, pred access.ExchangePredicate, opts access.ListOptions) (access.AccessResult, error) {
	if f.failWith != nil {
		return access.AccessResult{}, f.failWith
	}
	var ids []uint
	for _, ex := range f.exchanges {
		if opts.Status != "" && ex.status != opts.Status {
			continue
		}
		if !pred.All {
			owned := false
			if len(pred.OwnerIDs) > 0 {
				switch pred.OwnerField {
				case access.OwnerCoordinator:
					owned = containsID(pred.OwnerIDs, ex.coordinatorID)
				case access.OwnerClient:
					owned = containsID(pred.OwnerIDs, ex.clientID)
				}
			}
			if !owned && !f.matchesParticipant(ex.id, pred.ParticipantUserIDs, pred.ParticipantContactIDs) {
				continue
			}
		}
		ids = append(ids, ex.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	total := int64(len(ids))
	if opts.Limit > 0 && len(ids) > opts.Limit {
		ids = ids[:opts.Limit]
	}
	return access.AccessResult{IDs: ids, Total: total}, nil
}

func (f *fakeStore) FirstActiveParticipation(_ context.Context, userID, contactID uint, exchangeID uint) (*access.ParticipationRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var best *fakeParticipation
	for i := range f.participations {
		p := &f.participations[i]
		if !p.active || p.exchangeID != exchangeID {
			continue
		}
		if (p.userID == 0 || userID == 0 || p.userID != userID) &&
			(p.contactID == 0 || contactID == 0 || p.contactID != contactID) {
			continue
		}
		if best == nil || p.id < best.id {
			best = p
		}
	}
	if best == nil {
		return nil, nil
	}
	return &access.ParticipationRecord{
		ID:          best.id,
		ExchangeID:  best.exchangeID,
		RawOverride: best.override,
	}, nil
}

func (f *fakeStore) HasActiveParticipation(ctx context.Context, userID, contactID uint, exchangeID uint) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	p, err := f.FirstActiveParticipation(ctx, userID, contactID, exchangeID)
	return p != nil, err
}

func (f *fakeStore) ActiveAssignedContactIDs(_ context.Context, agencyContactID uint) ([]uint, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var ids []uint
	for _, a := range f.assignments {
		if a.active && a.agencyContactID == agencyContactID {
			ids = append(ids, a.thirdPartyContactID)
		}
	}
	return ids, nil
}

func (f *fakeStore) GetExchangeRef(_ context.Context, exchangeID uint) (*access.ExchangeRef, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, ex := range f.exchanges {
		if ex.id == exchangeID {
			return &access.ExchangeRef{ID: ex.id, CoordinatorID: ex.coordinatorID, ClientID: ex.clientID}, nil
		}
	}
	return nil, nil
}
