package access

import (
	"encoding/json"
	"strings"
)

// OverrideKind classifies the raw permission override stored on a
// participation row.
type OverrideKind int

const (
	// OverrideNone means no override is stored; role defaults apply.
	OverrideNone OverrideKind = iota
	// OverrideList is a JSON array of permission names: named permissions are
	// granted, everything else is denied.
	OverrideList
	// OverrideFlags is a JSON object mapping permission name to bool; absent
	// keys are denied.
	OverrideFlags
	// OverrideInvalid is a present but unparseable override. It grants
	// nothing: a malformed override must not widen into role defaults.
	OverrideInvalid
)

// Override is the decoded form of a participation's permission override.
type Override struct {
	Kind   OverrideKind
	grants map[Permission]bool
}

// ParseOverride decodes the override JSON stored on a participation. An empty
// value classifies as OverrideNone, a JSON array of names as OverrideList, a
// JSON object of name->bool as OverrideFlags, and anything else as
// OverrideInvalid.
func ParseOverride(raw string) Override {
	if strings.TrimSpace(raw) == "" {
		return Override{Kind: OverrideNone}
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err == nil {
		grants := make(map[Permission]bool, len(names))
		for _, n := range names {
			grants[Permission(n)] = true
		}
		return Override{Kind: OverrideList, grants: grants}
	}
	var flags map[string]bool
	if err := json.Unmarshal([]byte(raw), &flags); err == nil {
		grants := make(map[Permission]bool, len(flags))
		for k, v := range flags {
			grants[Permission(k)] = v
		}
		return Override{Kind: OverrideFlags, grants: grants}
	}
	return Override{Kind: OverrideInvalid}
}

// Has reports whether the override grants perm. None and Invalid grant
// nothing.
func (o Override) Has(perm Permission) bool {
	if o.Kind != OverrideList && o.Kind != OverrideFlags {
		return false
	}
	return o.grants[perm]
}
