// Package access is the authorization engine: it decides, per request, which
// exchanges a subject may see and which actions they may perform on them.
//
// Every answer is recomputed from the store on each call. Nothing in this
// package caches a decision across requests, so deactivating a participation
// or an agency assignment takes effect on the very next check.
package access

// Role is the closed set of account roles known to the platform.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleClient      Role = "client"
	RoleThirdParty  Role = "third_party"
	RoleAgency      Role = "agency"
)

// Subject is the authenticated principal an authorization question is asked
// about. ContactID is zero unless the account was created to match a
// pre-existing contact record. A Subject is immutable for the duration of a
// request; a role change is only observed by the next resolution.
type Subject struct {
	UserID    uint
	ContactID uint
	Role      Role
}

// IdentityKeys returns the ordered, deduplicated identifiers under which the
// subject may appear in the exchange client_id owner column, which holds a
// user id or a contact id depending on whether the exchange predates the
// account: the user id first, then the linked contact id when present and
// distinct. Participation matching does NOT use this list — user and contact
// ids are separate sequences and must stay on their own columns, see
// ContactKeys and the Store contract.
func (s Subject) IdentityKeys() []uint {
	if s.ContactID == 0 || s.ContactID == s.UserID {
		return []uint{s.UserID}
	}
	return []uint{s.UserID, s.ContactID}
}

// ContactKeys returns the subject's contact id as a participation contact-key
// list, empty when no contact is linked.
func (s Subject) ContactKeys() []uint {
	if s.ContactID == 0 {
		return nil
	}
	return []uint{s.ContactID}
}
