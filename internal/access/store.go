package access

import "context"

// ParticipationRecord is the store's view of an active participation row, as
// far as permission resolution needs it.
type ParticipationRecord struct {
	ID          uint
	ExchangeID  uint
	Role        Role
	RawOverride string // override JSON as stored; empty when absent
}

// ExchangeRef carries the owner columns of one exchange for fast-path checks.
type ExchangeRef struct {
	ID            uint
	CoordinatorID uint
	ClientID      uint
}

// Owner columns understood by the store.
const (
	OwnerCoordinator = "coordinator_id"
	OwnerClient      = "client_id"
)

// ExchangePredicate describes which exchanges a visibility strategy selects.
// The zero value selects nothing. Owner and participant clauses are combined
// with OR inside a single store query so the reported total stays accurate.
//
// User ids and contact ids are separate sequences, so the participant clauses
// keep them apart: a user id is only ever matched against the user_id column
// and a contact id against contact_id. Matching across the two would let a
// numeric collision between the tables grant visibility.
type ExchangePredicate struct {
	// All selects every exchange with no restriction.
	All bool
	// OwnerField/OwnerIDs select exchanges whose owner column matches any id.
	OwnerField string
	OwnerIDs   []uint
	// ParticipantUserIDs select exchanges holding an active participation
	// whose user_id matches any of these user ids.
	ParticipantUserIDs []uint
	// ParticipantContactIDs select exchanges holding an active participation
	// whose contact_id matches any of these contact ids.
	ParticipantContactIDs []uint
}

// ListOptions are caller refinements passed through to the store untouched.
// The engine does not interpret them.
type ListOptions struct {
	Status  string
	OrderBy string
	Limit   int
	Offset  int
	// Filters are free-form column equality filters; the store whitelists the
	// columns it accepts.
	Filters map[string]any
}

// AccessResult is a page of visible exchange ids plus the true total matching
// the predicate. Total ignores any Limit cap so collaborators can paginate
// against real counts.
type AccessResult struct {
	IDs   []uint
	Total int64
}

// Contains reports membership of id in the result page.
func (r AccessResult) Contains(id uint) bool {
	for _, v := range r.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Store is the query surface the engine runs on. Implementations must report
// lookup failures as errors: an empty result and a failed query are different
// things, and folding one into the other would make outages look like
// denials.
type Store interface {
	// FindExchanges runs pred with opts applied, returning a (possibly
	// capped) id page and the uncapped total.
	FindExchanges(ctx context.Context, pred ExchangePredicate, opts ListOptions) (AccessResult, error)
	// FirstActiveParticipation returns the active participation on the
	// exchange whose user_id equals userID or whose contact_id equals
	// contactID (zero means the subject has no linked contact), lowest
	// participation id first, or nil when none matches.
	FirstActiveParticipation(ctx context.Context, userID, contactID uint, exchangeID uint) (*ParticipationRecord, error)
	// HasActiveParticipation reports whether such a participation exists.
	HasActiveParticipation(ctx context.Context, userID, contactID uint, exchangeID uint) (bool, error)
	// ActiveAssignedContactIDs returns the contact ids of third parties
	// actively assigned to the given agency contact.
	ActiveAssignedContactIDs(ctx context.Context, agencyContactID uint) ([]uint, error)
	// GetExchangeRef returns the owner columns of one exchange, or nil when
	// the exchange does not exist.
	GetExchangeRef(ctx context.Context, exchangeID uint) (*ExchangeRef, error)
}
