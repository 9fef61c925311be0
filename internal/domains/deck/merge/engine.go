package merge

import (
	"fmt"
	"time"

	"deckforge-backend/internal/domains/deck/model"
)

// =====================================================
// MERGE ENGINE
// =====================================================
//
// Merge reconciles a local deck with an incoming snapshot of the same
// conceptual deck. Matching at every level is by local identifier, never
// by position or content. The engine by construction never fails on
// divergent data; any irreconcilable difference becomes a Conflict. It
// fails only on structurally invalid input, before any diffing begins.
//
// Default policy: the most recently modified snapshot wins differing
// fields; equal or absent timestamps defer to the user (merged value stays
// local). One-sided entities are kept (local-only) or added (remote-only)
// regardless of the winner. Caller overrides trump everything.

// Merge produces a merged deck plus the ordered conflict list and the full
// action audit trail. Neither input is mutated.
func Merge(local, incoming model.Deck, policy Policy) (Result, error) {
	if err := local.Validate(); err != nil {
		return Result{}, err
	}
	if err := incoming.Validate(); err != nil {
		return Result{}, err
	}
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	m := &merger{policy: policy}
	m.winner, m.winnerRule = defaultResolution(local.ModifiedAt, incoming.ModifiedAt)

	merged := local.Clone()

	// The deck identifier never changes on import; a mismatch is recorded
	// but always resolves to the local id.
	if incoming.ID != local.ID {
		m.actions = append(m.actions, Action{
			Scope: ScopeDeck, Path: "id", Rule: RuleIdentity,
			Resolution: ResolutionKeepLocal, Local: local.ID, Incoming: incoming.ID,
		})
	}

	merged.Title = m.resolveString(ScopeDeck, "title", local.Title, incoming.Title)
	merged.Theme = m.resolveString(ScopeDeck, "theme", local.Theme, incoming.Theme)
	merged.Layout = m.resolveString(ScopeDeck, "layout", local.Layout, incoming.Layout)

	merged.Cards = m.mergeCards(local.Cards, incoming.Cards)

	merged.ModifiedAt = laterTime(local.ModifiedAt, incoming.ModifiedAt)
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = incoming.CreatedAt
	}
	if merged.Published == nil && incoming.Published != nil {
		p := *incoming.Published
		merged.Published = &p
	}

	return Result{
		Deck:      merged,
		Conflicts: m.conflicts,
		Actions:   m.actions,
	}, nil
}

type merger struct {
	policy     Policy
	winner     Resolution
	winnerRule string
	conflicts  []Conflict
	actions    []Action
}

func defaultResolution(local, incoming time.Time) (Resolution, string) {
	switch {
	case local.IsZero() || incoming.IsZero():
		return ResolutionDeferred, RuleTie
	case incoming.After(local):
		return ResolutionTakeIncoming, RuleNewerWins
	case local.After(incoming):
		return ResolutionKeepLocal, RuleNewerWins
	default:
		return ResolutionDeferred, RuleTie
	}
}

// resolution picks the resolution for a divergence at path: the caller's
// override when one exists, the timestamp winner otherwise.
func (m *merger) resolution(path string) (Resolution, string) {
	if r, ok := m.policy.Overrides[path]; ok {
		return r, RuleOverride
	}
	return m.winner, m.winnerRule
}

// decide records the action (and, when deferred, the conflict) for one
// divergence and returns the resolution to apply. merge-both on a
// non-text field cannot be honored and degrades to deferred.
func (m *merger) decide(scope Scope, path string, local, incoming any, canMergeBoth bool) Resolution {
	res, rule := m.resolution(path)
	if res == ResolutionMergeBoth && !canMergeBoth {
		res = ResolutionDeferred
	}
	m.actions = append(m.actions, Action{
		Scope: scope, Path: path, Rule: rule, Resolution: res,
		Local: local, Incoming: incoming,
	})
	if res == ResolutionDeferred {
		m.conflicts = append(m.conflicts, Conflict{
			Scope: scope, Path: path, Type: conflictType(scope),
			Local: local, Incoming: incoming, Resolution: ResolutionDeferred,
		})
	}
	return res
}

func conflictType(scope Scope) string {
	if scope == ScopeDeck {
		return ConflictMetadata
	}
	return ConflictField
}

func (m *merger) resolveString(scope Scope, path, local, incoming string) string {
	if local == incoming {
		return local
	}
	switch m.decide(scope, path, local, incoming, true) {
	case ResolutionTakeIncoming:
		return incoming
	case ResolutionMergeBoth:
		return mergeStrings(local, incoming)
	default:
		return local
	}
}

func (m *merger) resolveInt(path string, local, incoming int) int {
	if local == incoming {
		return local
	}
	if m.decide(ScopeField, path, local, incoming, false) == ResolutionTakeIncoming {
		return incoming
	}
	return local
}

func (m *merger) resolveBool(path string, local, incoming bool) bool {
	if local == incoming {
		return local
	}
	if m.decide(ScopeField, path, local, incoming, false) == ResolutionTakeIncoming {
		return incoming
	}
	return local
}

func (m *merger) resolveImage(path string, local, incoming *model.CardImage) *model.CardImage {
	if model.ImagesEqual(local, incoming) {
		return local
	}
	if m.decide(ScopeField, path, local, incoming, false) == ResolutionTakeIncoming {
		if incoming == nil {
			return nil
		}
		img := *incoming
		return &img
	}
	return local
}

// mergeStrings is the merge-both combination for text: both values kept,
// local first.
func mergeStrings(local, incoming string) string {
	if local == "" {
		return incoming
	}
	if incoming == "" {
		return local
	}
	return local + "\n\n" + incoming
}

// recordAddition handles an entity present on one side only. defaultRes is
// keep-local for local-only entities and take-incoming for remote-only
// ones; an override may drop the entity instead. Returns whether the
// entity belongs in the merged deck.
func (m *merger) recordAddition(scope Scope, path, typ string, local, incoming any) bool {
	res, rule := ResolutionKeepLocal, RuleAddition
	if typ == ConflictRemoteOnly {
		res = ResolutionTakeIncoming
	}
	if r, ok := m.policy.Overrides[path]; ok {
		res, rule = r, RuleOverride
	}
	m.actions = append(m.actions, Action{
		Scope: scope, Path: path, Rule: rule, Resolution: res,
		Local: local, Incoming: incoming,
	})
	m.conflicts = append(m.conflicts, Conflict{
		Scope: scope, Path: path, Type: typ,
		Local: local, Incoming: incoming, Resolution: res,
	})
	switch typ {
	case ConflictLocalOnly:
		// take-incoming means "accept the incoming deletion".
		return res != ResolutionTakeIncoming
	default:
		// keep-local means "reject the incoming addition".
		return res != ResolutionKeepLocal
	}
}

// =====================================================
// IDENTIFIER MATCHING
// =====================================================

// entityKey matches entities by identifier; occ disambiguates accidental
// identifier collisions within one parent (k-th occurrence pairs with k-th
// occurrence, extras become one-sided entities).
type entityKey struct {
	id  string
	occ int
}

func (k entityKey) path(prefix string) string {
	if k.occ == 0 {
		return fmt.Sprintf("%s[%s]", prefix, k.id)
	}
	return fmt.Sprintf("%s[%s#%d]", prefix, k.id, k.occ)
}

func cardKeys(cards []model.Card) ([]entityKey, map[entityKey]int) {
	keys := make([]entityKey, len(cards))
	index := make(map[entityKey]int, len(cards))
	seen := map[string]int{}
	for i, c := range cards {
		k := entityKey{id: c.ID, occ: seen[c.ID]}
		seen[c.ID]++
		keys[i] = k
		index[k] = i
	}
	return keys, index
}

// orderDiffers reports whether the two key sequences disagree on the
// relative order of the keys they share.
func orderDiffers(localKeys, incomingKeys []entityKey, incomingIndex map[entityKey]int) bool {
	last := -1
	for _, k := range localKeys {
		pos, ok := incomingIndex[k]
		if !ok {
			continue
		}
		if pos < last {
			return true
		}
		last = pos
	}
	return false
}

// =====================================================
// CARD LEVEL
// =====================================================

func (m *merger) mergeCards(local, incoming []model.Card) []model.Card {
	localKeys, localIndex := cardKeys(local)
	incomingKeys, incomingIndex := cardKeys(incoming)

	// Order is a divergence like any other: the winner's sequence becomes
	// the spine, the loser's one-sided cards are appended in their own
	// relative order. A pure reorder therefore yields one action and no
	// add/remove conflicts.
	orderRes := m.winner
	orderRule := m.winnerRule
	if r, ok := m.policy.Overrides["cards"]; ok {
		orderRes, orderRule = r, RuleOverride
	}
	if orderDiffers(localKeys, incomingKeys, incomingIndex) {
		m.actions = append(m.actions, Action{
			Scope: ScopeDeck, Path: "cards", Rule: orderRule, Resolution: orderRes,
		})
		if orderRes == ResolutionDeferred {
			m.conflicts = append(m.conflicts, Conflict{
				Scope: ScopeDeck, Path: "cards", Type: ConflictMetadata,
				Resolution: ResolutionDeferred,
			})
		}
	}

	spineKeys, tailKeys := localKeys, incomingKeys
	if orderRes == ResolutionTakeIncoming {
		spineKeys, tailKeys = incomingKeys, localKeys
	}

	merged := make([]model.Card, 0, len(local)+len(incoming))
	appendCard := func(k entityKey) {
		li, inLocal := localIndex[k]
		ii, inIncoming := incomingIndex[k]
		path := k.path("cards")
		switch {
		case inLocal && inIncoming:
			merged = append(merged, m.mergeCard(local[li], incoming[ii], path))
		case inLocal:
			if m.recordAddition(ScopeCard, path, ConflictLocalOnly, local[li], nil) {
				merged = append(merged, local[li].Clone())
			}
		default:
			if m.recordAddition(ScopeCard, path, ConflictRemoteOnly, nil, incoming[ii]) {
				merged = append(merged, incoming[ii].Clone())
			}
		}
	}
	for _, k := range spineKeys {
		appendCard(k)
	}
	for _, k := range tailKeys {
		if _, onSpine := indexOf(spineKeys, k); onSpine {
			continue
		}
		appendCard(k)
	}
	return merged
}

func indexOf(keys []entityKey, k entityKey) (int, bool) {
	for i, cand := range keys {
		if cand == k {
			return i, true
		}
	}
	return 0, false
}

// =====================================================
// FIELD LEVEL
// =====================================================

func (m *merger) mergeCard(local, incoming model.Card, path string) model.Card {
	out := local.Clone()
	out.Title = m.resolveString(ScopeField, path+".title", local.Title, incoming.Title)
	out.Subtitle = m.resolveString(ScopeField, path+".subtitle", local.Subtitle, incoming.Subtitle)
	out.Description = m.resolveString(ScopeField, path+".description", local.Description, incoming.Description)
	out.Image = m.resolveImage(path+".image", local.Image, incoming.Image)
	out.Traits = m.mergeTraits(local.Traits, incoming.Traits, path+".traits")
	out.Stats = m.mergeStats(local.Stats, incoming.Stats, path+".stats")
	return out
}

func traitKeys(traits []model.Trait) ([]entityKey, map[entityKey]int) {
	keys := make([]entityKey, len(traits))
	index := make(map[entityKey]int, len(traits))
	seen := map[string]int{}
	for i, t := range traits {
		k := entityKey{id: t.ID, occ: seen[t.ID]}
		seen[t.ID]++
		keys[i] = k
		index[k] = i
	}
	return keys, index
}

func (m *merger) mergeTraits(local, incoming []model.Trait, prefix string) []model.Trait {
	localKeys, localIndex := traitKeys(local)
	incomingKeys, incomingIndex := traitKeys(incoming)

	spineKeys := localKeys
	tailKeys := incomingKeys
	if m.sequenceOrder(prefix, localKeys, incomingKeys, incomingIndex) == ResolutionTakeIncoming {
		spineKeys, tailKeys = incomingKeys, localKeys
	}

	merged := make([]model.Trait, 0, len(local)+len(incoming))
	appendTrait := func(k entityKey) {
		li, inLocal := localIndex[k]
		ii, inIncoming := incomingIndex[k]
		path := k.path(prefix)
		switch {
		case inLocal && inIncoming:
			merged = append(merged, m.mergeTrait(local[li], incoming[ii], path))
		case inLocal:
			if m.recordAddition(ScopeField, path, ConflictLocalOnly, local[li], nil) {
				merged = append(merged, local[li])
			}
		default:
			if m.recordAddition(ScopeField, path, ConflictRemoteOnly, nil, incoming[ii]) {
				merged = append(merged, incoming[ii])
			}
		}
	}
	for _, k := range spineKeys {
		appendTrait(k)
	}
	for _, k := range tailKeys {
		if _, onSpine := indexOf(spineKeys, k); onSpine {
			continue
		}
		appendTrait(k)
	}
	return merged
}

func (m *merger) mergeTrait(local, incoming model.Trait, path string) model.Trait {
	return model.Trait{
		ID:          local.ID,
		Title:       m.resolveString(ScopeField, path+".title", local.Title, incoming.Title),
		Description: m.resolveString(ScopeField, path+".description", local.Description, incoming.Description),
		Public:      m.resolveBool(path+".public", local.Public, incoming.Public),
	}
}

func statKeys(stats []model.Stat) ([]entityKey, map[entityKey]int) {
	keys := make([]entityKey, len(stats))
	index := make(map[entityKey]int, len(stats))
	seen := map[string]int{}
	for i, s := range stats {
		k := entityKey{id: s.ID, occ: seen[s.ID]}
		seen[s.ID]++
		keys[i] = k
		index[k] = i
	}
	return keys, index
}

func (m *merger) mergeStats(local, incoming []model.Stat, prefix string) []model.Stat {
	localKeys, localIndex := statKeys(local)
	incomingKeys, incomingIndex := statKeys(incoming)

	spineKeys := localKeys
	tailKeys := incomingKeys
	if m.sequenceOrder(prefix, localKeys, incomingKeys, incomingIndex) == ResolutionTakeIncoming {
		spineKeys, tailKeys = incomingKeys, localKeys
	}

	merged := make([]model.Stat, 0, len(local)+len(incoming))
	appendStat := func(k entityKey) {
		li, inLocal := localIndex[k]
		ii, inIncoming := incomingIndex[k]
		path := k.path(prefix)
		switch {
		case inLocal && inIncoming:
			merged = append(merged, m.mergeStat(local[li], incoming[ii], path))
		case inLocal:
			if m.recordAddition(ScopeField, path, ConflictLocalOnly, local[li], nil) {
				merged = append(merged, local[li])
			}
		default:
			if m.recordAddition(ScopeField, path, ConflictRemoteOnly, nil, incoming[ii]) {
				merged = append(merged, incoming[ii])
			}
		}
	}
	for _, k := range spineKeys {
		appendStat(k)
	}
	for _, k := range tailKeys {
		if _, onSpine := indexOf(spineKeys, k); onSpine {
			continue
		}
		appendStat(k)
	}
	return merged
}

func (m *merger) mergeStat(local, incoming model.Stat, path string) model.Stat {
	return model.Stat{
		ID:          local.ID,
		Title:       m.resolveString(ScopeField, path+".title", local.Title, incoming.Title),
		Value:       m.resolveInt(path+".value", local.Value, incoming.Value),
		Tracked:     m.resolveBool(path+".tracked", local.Tracked, incoming.Tracked),
		Public:      m.resolveBool(path+".public", local.Public, incoming.Public),
		Description: m.resolveString(ScopeField, path+".description", local.Description, incoming.Description),
	}
}

// sequenceOrder settles sub-sequence ordering the same way cards are
// settled, recording an action only when the shared order actually
// differs.
func (m *merger) sequenceOrder(prefix string, localKeys, incomingKeys []entityKey, incomingIndex map[entityKey]int) Resolution {
	res := m.winner
	rule := m.winnerRule
	if r, ok := m.policy.Overrides[prefix]; ok {
		res, rule = r, RuleOverride
	}
	if orderDiffers(localKeys, incomingKeys, incomingIndex) {
		m.actions = append(m.actions, Action{
			Scope: ScopeField, Path: prefix, Rule: rule, Resolution: res,
		})
		if res == ResolutionDeferred {
			m.conflicts = append(m.conflicts, Conflict{
				Scope: ScopeField, Path: prefix, Type: ConflictField,
				Resolution: ResolutionDeferred,
			})
		}
	}
	return res
}

func laterTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
