package access

import (
	"context"
	"log"
)

// VisibilityStrategy computes the set of exchanges one role may see.
type VisibilityStrategy interface {
	Visible(ctx context.Context, st Store, sub Subject, opts ListOptions) (AccessResult, error)
}

// VisibilityResolver dispatches to the per-role strategy. A role outside the
// closed enum resolves to an empty set and is logged as a policy gap so it
// can be told apart from a legitimate "nothing assigned" empty result.
type VisibilityResolver struct {
	store      Store
	strategies map[Role]VisibilityStrategy
	logger     *log.Logger
}

func NewVisibilityResolver(st Store) *VisibilityResolver {
	return &VisibilityResolver{
		store: st,
		strategies: map[Role]VisibilityStrategy{
			RoleAdmin:       adminStrategy{},
			RoleCoordinator: coordinatorStrategy{},
			RoleClient:      clientStrategy{},
			RoleThirdParty:  thirdPartyStrategy{},
			RoleAgency:      agencyStrategy{},
		},
		logger: log.Default(),
	}
}

// SetLogger redirects policy-gap logging (used by tests).
func (r *VisibilityResolver) SetLogger(l *log.Logger) { r.logger = l }

// Visible returns the exchanges sub may see plus the true total. The total
// ignores opts.Limit.
func (r *VisibilityResolver) Visible(ctx context.Context, sub Subject, opts ListOptions) (AccessResult, error) {
	if sub.UserID == 0 {
		return AccessResult{}, ErrMissingUser
	}
	strat, ok := r.strategies[sub.Role]
	if !ok {
		r.logger.Printf("access: no visibility strategy for role %q (user %d), denying", sub.Role, sub.UserID)
		return AccessResult{IDs: []uint{}}, nil
	}
	return strat.Visible(ctx, r.store, sub, opts)
}

// adminStrategy: unrestricted, no predicate at all.
type adminStrategy struct{}

func (adminStrategy) Visible(ctx context.Context, st Store, _ Subject, opts ListOptions) (AccessResult, error) {
	return st.FindExchanges(ctx, ExchangePredicate{All: true}, opts)
}

// coordinatorStrategy: owns the exchange via coordinator_id, or participates
// directly. One query, owner OR participation.
type coordinatorStrategy struct{}

func (coordinatorStrategy) Visible(ctx context.Context, st Store, sub Subject, opts ListOptions) (AccessResult, error) {
	pred := ExchangePredicate{
		OwnerField:            OwnerCoordinator,
		OwnerIDs:              []uint{sub.UserID},
		ParticipantUserIDs:    []uint{sub.UserID},
		ParticipantContactIDs: sub.ContactKeys(),
	}
	return st.FindExchanges(ctx, pred, opts)
}

// clientStrategy: client_id may hold either the user id or the linked contact
// id, because clients are often invited as contacts before they have an
// account. Both keys are matched against the owner column and the
// participation table.
type clientStrategy struct{}

func (clientStrategy) Visible(ctx context.Context, st Store, sub Subject, opts ListOptions) (AccessResult, error) {
	pred := ExchangePredicate{
		// client_id holds either identity depending on whether the exchange
		// predates the account, so the owner match takes both keys.
		OwnerField:            OwnerClient,
		OwnerIDs:              sub.IdentityKeys(),
		ParticipantUserIDs:    []uint{sub.UserID},
		ParticipantContactIDs: sub.ContactKeys(),
	}
	return st.FindExchanges(ctx, pred, opts)
}

// thirdPartyStrategy: participation only. Third parties never own an
// exchange, so owner columns are deliberately not consulted.
type thirdPartyStrategy struct{}

func (thirdPartyStrategy) Visible(ctx context.Context, st Store, sub Subject, opts ListOptions) (AccessResult, error) {
	pred := ExchangePredicate{
		ParticipantUserIDs:    []uint{sub.UserID},
		ParticipantContactIDs: sub.ContactKeys(),
	}
	return st.FindExchanges(ctx, pred, opts)
}

// agencyStrategy: visibility is inherited from the third parties the agency
// is assigned to. The participation lookup depends on the assignment lookup,
// so the two stay sequential.
type agencyStrategy struct{}

func (agencyStrategy) Visible(ctx context.Context, st Store, sub Subject, opts ListOptions) (AccessResult, error) {
	if sub.ContactID == 0 {
		return AccessResult{IDs: []uint{}}, nil
	}
	contacts, err := st.ActiveAssignedContactIDs(ctx, sub.ContactID)
	if err != nil {
		return AccessResult{}, err
	}
	if len(contacts) == 0 {
		return AccessResult{IDs: []uint{}}, nil
	}
	// Assigned third parties are contact records; only contact_id may match.
	return st.FindExchanges(ctx, ExchangePredicate{ParticipantContactIDs: contacts}, opts)
}
