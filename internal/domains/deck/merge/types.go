package merge

import (
	"deckforge-backend/internal/domains/deck/model"
)

// =====================================================
// SCOPES AND RESOLUTIONS
// =====================================================

// Scope is the level at which a divergence was found.
type Scope string

const (
	ScopeDeck  Scope = "deck"  // deck metadata (title, theme, layout)
	ScopeCard  Scope = "card"  // card added/removed
	ScopeField Scope = "field" // a field of a matched card, trait or stat
)

// Resolution is the action applied to one divergence.
type Resolution string

const (
	ResolutionKeepLocal    Resolution = "keep-local"
	ResolutionTakeIncoming Resolution = "take-incoming"
	ResolutionMergeBoth    Resolution = "merge-both"
	// ResolutionDeferred marks a divergence policy could not settle; the
	// merged deck keeps the local value and the caller is expected to ask
	// the user.
	ResolutionDeferred Resolution = "deferred"
)

func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionKeepLocal, ResolutionTakeIncoming, ResolutionMergeBoth, ResolutionDeferred:
		return true
	}
	return false
}

// Conflict classification tags.
const (
	ConflictMetadata   = "metadata"    // deck-level scalar divergence
	ConflictLocalOnly  = "local-only"  // entity present only in the local snapshot
	ConflictRemoteOnly = "remote-only" // entity present only in the incoming snapshot
	ConflictField      = "field"       // field divergence on a matched entity
)

// Rules recorded on merge actions, naming why a resolution fired.
const (
	RuleNewerWins = "newer-wins" // modification timestamps decided
	RuleOverride  = "override"   // caller-supplied per-path override
	RuleAddition  = "addition"   // default handling of one-sided entities
	RuleIdentity  = "identity"   // deck id always stays local
	RuleTie       = "tie"        // timestamps equal or absent, deferred
)

// =====================================================
// DOMAIN VALUES
// =====================================================

// Conflict records one divergence between the two snapshots. It is a
// first-class value, never an error: routine divergence is expected.
type Conflict struct {
	Scope      Scope      `json:"scope"`
	Path       string     `json:"path"`
	Type       string     `json:"type"`
	Local      any        `json:"local,omitempty"`
	Incoming   any        `json:"incoming,omitempty"`
	Resolution Resolution `json:"resolution"`
}

// Action is one entry of the audit trail: what changed, at which path,
// which rule fired. Conflicts always have a matching action; actions also
// cover divergences policy settled silently.
type Action struct {
	Scope      Scope      `json:"scope"`
	Path       string     `json:"path"`
	Rule       string     `json:"rule"`
	Resolution Resolution `json:"resolution"`
	Local      any        `json:"local,omitempty"`
	Incoming   any        `json:"incoming,omitempty"`
}

// Result is the full outcome of a merge.
type Result struct {
	Deck      model.Deck `json:"deck"`
	Conflicts []Conflict `json:"conflicts"`
	Actions   []Action   `json:"actions"`
}

// HasDeferred reports whether any conflict still needs the user.
func (r Result) HasDeferred() bool {
	for _, c := range r.Conflicts {
		if c.Resolution == ResolutionDeferred {
			return true
		}
	}
	return false
}

// =====================================================
// POLICY
// =====================================================

// Policy configures how divergences are settled. The zero value is the
// default policy: the most recently modified snapshot wins, ties defer.
type Policy struct {
	// Overrides maps a divergence path (as it appears on Conflict.Path,
	// e.g. "title" or "cards[c2].stats[s1].value") to a resolution chosen
	// by the caller. Overrides take precedence over everything else.
	Overrides map[string]Resolution
}

// Validate rejects override resolutions outside the enum. Paths are not
// checked against the decks; an override for a path that never diverges is
// simply never consulted.
func (p Policy) Validate() error {
	for path, r := range p.Overrides {
		if !r.IsValid() {
			return model.NewValidationError(path, "unknown resolution "+string(r))
		}
	}
	return nil
}

// ParseOverrides converts the wire form (map of path to resolution string)
// into a validated policy.
func ParseOverrides(raw map[string]string) (Policy, error) {
	if len(raw) == 0 {
		return Policy{}, nil
	}
	p := Policy{Overrides: make(map[string]Resolution, len(raw))}
	for path, r := range raw {
		p.Overrides[path] = Resolution(r)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
