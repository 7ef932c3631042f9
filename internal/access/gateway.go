package access

import "context"

// Gateway is the façade collaborators call: visibility listings, membership
// checks, permission checks and child-entity scoping. Denial is always a
// plain false/empty result; only store failures and contract violations come
// back as errors.
type Gateway struct {
	store        Store
	visibility   *VisibilityResolver
	participants *ParticipantResolver
}

func NewGateway(st Store) *Gateway {
	return &Gateway{
		store:        st,
		visibility:   NewVisibilityResolver(st),
		participants: NewParticipantResolver(st),
	}
}

// Visibility exposes the underlying resolver (logger injection in tests).
func (g *Gateway) Visibility() *VisibilityResolver { return g.visibility }

// AccessibleExchanges returns the exchanges sub may see. Total ignores any
// opts.Limit cap.
func (g *Gateway) AccessibleExchanges(ctx context.Context, sub Subject, opts ListOptions) (AccessResult, error) {
	return g.visibility.Visible(ctx, sub, opts)
}

// CanAccess reports whether sub may see the exchange. Fast path first: a
// direct active participation on either identity key, or for clients an
// owner-column match. Only when both miss is the full visibility set computed
// and membership tested, so the common single-exchange check stays cheap.
func (g *Gateway) CanAccess(ctx context.Context, sub Subject, exchangeID uint) (bool, error) {
	if sub.UserID == 0 {
		return false, ErrMissingUser
	}
	if sub.Role == RoleAdmin {
		return true, nil
	}
	ok, err := g.store.HasActiveParticipation(ctx, sub.UserID, sub.ContactID, exchangeID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if sub.Role == RoleClient {
		ref, err := g.store.GetExchangeRef(ctx, exchangeID)
		if err != nil {
			return false, err
		}
		if ref != nil {
			for _, key := range sub.IdentityKeys() {
				if ref.ClientID == key {
					return true, nil
				}
			}
		}
	}
	res, err := g.visibility.Visible(ctx, sub, ListOptions{})
	if err != nil {
		return false, err
	}
	return res.Contains(exchangeID), nil
}

// CheckPermission answers whether sub may perform perm on the exchange.
// Admins short-circuit to true. Everyone else must be able to see the
// exchange before any permission value is consulted; an invisible exchange
// denies regardless of what an override or the matrix would say. With
// visibility established, a participation override wins over the role's
// default matrix row.
func (g *Gateway) CheckPermission(ctx context.Context, sub Subject, exchangeID uint, perm Permission) (bool, error) {
	if sub.UserID == 0 {
		return false, ErrMissingUser
	}
	if sub.Role == RoleAdmin {
		return true, nil
	}
	visible, err := g.CanAccess(ctx, sub, exchangeID)
	if err != nil {
		return false, err
	}
	if !visible {
		return false, nil
	}
	set, found, err := g.participants.Resolve(ctx, sub, exchangeID)
	if err != nil {
		return false, err
	}
	if found {
		return set.Has(perm), nil
	}
	return DefaultPermission(sub.Role, perm), nil
}

// PermissionMap evaluates every known permission for sub on one exchange in
// a single resolution pass, for UI consumption (show/hide controls). Same
// rules as CheckPermission: invisible exchange denies everything, override
// beats matrix.
func (g *Gateway) PermissionMap(ctx context.Context, sub Subject, exchangeID uint) (map[Permission]bool, error) {
	if sub.UserID == 0 {
		return nil, ErrMissingUser
	}
	out := make(map[Permission]bool, len(AllPermissions))
	if sub.Role == RoleAdmin {
		for _, p := range AllPermissions {
			out[p] = true
		}
		return out, nil
	}
	visible, err := g.CanAccess(ctx, sub, exchangeID)
	if err != nil {
		return nil, err
	}
	if !visible {
		for _, p := range AllPermissions {
			out[p] = false
		}
		return out, nil
	}
	set, found, err := g.participants.Resolve(ctx, sub, exchangeID)
	if err != nil {
		return nil, err
	}
	for _, p := range AllPermissions {
		if found {
			out[p] = set.Has(p)
		} else {
			out[p] = DefaultPermission(sub.Role, p)
		}
	}
	return out, nil
}

// VisibleExchangeIDs returns the full uncapped visible id set for scoping.
// restricted is false for admins, who bypass scoping entirely.
func (g *Gateway) VisibleExchangeIDs(ctx context.Context, sub Subject) (ids []uint, restricted bool, err error) {
	if sub.UserID == 0 {
		return nil, false, ErrMissingUser
	}
	if sub.Role == RoleAdmin {
		return nil, false, nil
	}
	res, err := g.visibility.Visible(ctx, sub, ListOptions{})
	if err != nil {
		return nil, false, err
	}
	return res.IDs, true, nil
}

// ScopeChildren filters a child collection (tasks, documents, messages) to
// the entries whose parent exchange is visible to sub. The visible set is
// computed once for the whole collection. Admins get the input back
// unfiltered; an empty visible set filters everything without looking at the
// children.
func ScopeChildren[T any](ctx context.Context, g *Gateway, sub Subject, children []T, parentID func(T) uint) ([]T, error) {
	ids, restricted, err := g.VisibleExchangeIDs(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !restricted {
		return children, nil
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	visible := make(map[uint]bool, len(ids))
	for _, id := range ids {
		visible[id] = true
	}
	out := make([]T, 0, len(children))
	for _, c := range children {
		if visible[parentID(c)] {
			out = append(out, c)
		}
	}
	return out, nil
}
