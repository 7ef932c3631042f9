package access

import "context"

// PermissionSet is the resolved grants for one (subject, exchange) pair.
// Never persisted; recomputed on every check.
type PermissionSet struct {
	override Override
}

// Has reports whether the set grants perm. Absent keys are false.
func (s PermissionSet) Has(perm Permission) bool { return s.override.Has(perm) }

// ParticipantResolver extracts the override permission set from a subject's
// active participation on one exchange.
type ParticipantResolver struct {
	store Store
}

func NewParticipantResolver(st Store) *ParticipantResolver {
	return &ParticipantResolver{store: st}
}

// Resolve returns the override permission set from the first active
// participation (lowest participation id) matching the subject's user id on
// user_id or their linked contact id on contact_id. The lowest-id order makes
// the outcome deterministic when both identities match different
// participations with different overrides.
//
// found is false when no participation matches or the participation carries
// no override; the caller then falls back to role defaults. A malformed
// override reports found=true with zero grants so defaults cannot widen it.
func (r *ParticipantResolver) Resolve(ctx context.Context, sub Subject, exchangeID uint) (PermissionSet, bool, error) {
	part, err := r.store.FirstActiveParticipation(ctx, sub.UserID, sub.ContactID, exchangeID)
	if err != nil {
		return PermissionSet{}, false, err
	}
	if part == nil {
		return PermissionSet{}, false, nil
	}
	ov := ParseOverride(part.RawOverride)
	if ov.Kind == OverrideNone {
		return PermissionSet{}, false, nil
	}
	return PermissionSet{override: ov}, true, nil
}
