package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckforge-backend/internal/domains/deck/model"
)

var (
	older = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	newer = time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)
)

func baseDeck(modified time.Time) model.Deck {
	return model.Deck{
		ID:         "d1",
		Title:      "Heroes",
		Theme:      model.DefaultTheme,
		Layout:     model.DefaultLayout,
		ModifiedAt: modified,
		Cards: []model.Card{
			{
				ID:          "c1",
				Title:       "Aria",
				Description: "Swift scout.",
				Traits: []model.Trait{
					{ID: "t1", Title: "Brave", Public: true},
				},
				Stats: []model.Stat{
					{ID: "s1", Title: "HP", Value: 10, Tracked: true, Public: true},
				},
			},
			{
				ID:    "c2",
				Title: "Borin",
			},
		},
	}
}

func findAction(t *testing.T, actions []Action, path string) Action {
	t.Helper()
	for _, a := range actions {
		if a.Path == path {
			return a
		}
	}
	t.Fatalf("no action at path %q (have %v)", path, actions)
	return Action{}
}

func findConflict(t *testing.T, conflicts []Conflict, path string) Conflict {
	t.Helper()
	for _, c := range conflicts {
		if c.Path == path {
			return c
		}
	}
	t.Fatalf("no conflict at path %q (have %v)", path, conflicts)
	return Conflict{}
}

func TestMergeIdenticalDecks(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(older)

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Actions)
	assert.False(t, res.HasDeferred())
	assert.True(t, model.Equivalent(local, res.Deck))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Title = "Heroes v2"
	incoming.Cards[0].Stats[0].Value = 12

	_, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.Equal(t, "Heroes", local.Title)
	assert.Equal(t, 10, local.Cards[0].Stats[0].Value)
	assert.Equal(t, "Heroes v2", incoming.Title)
}

func TestMergeNewerIncomingWins(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Title = "Heroes v2"
	incoming.Cards[0].Stats[0].Value = 12

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "Heroes v2", res.Deck.Title)
	assert.Equal(t, 12, res.Deck.Cards[0].Stats[0].Value)
	assert.Equal(t, newer, res.Deck.ModifiedAt)

	a := findAction(t, res.Actions, "title")
	assert.Equal(t, ScopeDeck, a.Scope)
	assert.Equal(t, RuleNewerWins, a.Rule)
	assert.Equal(t, ResolutionTakeIncoming, a.Resolution)
	assert.Equal(t, "Heroes", a.Local)
	assert.Equal(t, "Heroes v2", a.Incoming)

	a = findAction(t, res.Actions, "cards[c1].stats[s1].value")
	assert.Equal(t, ScopeField, a.Scope)
	assert.Equal(t, ResolutionTakeIncoming, a.Resolution)
}

func TestMergeNewerLocalWins(t *testing.T) {
	local := baseDeck(newer)
	incoming := baseDeck(older)
	incoming.Title = "Heroes v2"

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "Heroes", res.Deck.Title)
	assert.Equal(t, newer, res.Deck.ModifiedAt)
	assert.Equal(t, ResolutionKeepLocal, findAction(t, res.Actions, "title").Resolution)
}

func TestMergeLocalOnlyCardKept(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards = incoming.Cards[:1] // c2 removed on the incoming side

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	require.Len(t, res.Deck.Cards, 2)
	assert.Equal(t, "c2", res.Deck.Cards[1].ID)

	c := findConflict(t, res.Conflicts, "cards[c2]")
	assert.Equal(t, ScopeCard, c.Scope)
	assert.Equal(t, ConflictLocalOnly, c.Type)
	assert.Equal(t, ResolutionKeepLocal, c.Resolution)
	assert.False(t, res.HasDeferred())
	assert.Equal(t, RuleAddition, findAction(t, res.Actions, "cards[c2]").Rule)
}

func TestMergeLocalOnlyCardDroppedByOverride(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards = incoming.Cards[:1]

	policy := Policy{Overrides: map[string]Resolution{
		"cards[c2]": ResolutionTakeIncoming, // accept the deletion
	}}
	res, err := Merge(local, incoming, policy)
	require.NoError(t, err)

	require.Len(t, res.Deck.Cards, 1)
	assert.Equal(t, "c1", res.Deck.Cards[0].ID)
	assert.Equal(t, RuleOverride, findAction(t, res.Actions, "cards[c2]").Rule)
}

func TestMergeRemoteOnlyCardAdded(t *testing.T) {
	local := baseDeck(newer)
	incoming := baseDeck(older)
	incoming.Cards = append(incoming.Cards, model.Card{ID: "c3", Title: "Cale"})

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	require.Len(t, res.Deck.Cards, 3)
	assert.Equal(t, "c3", res.Deck.Cards[2].ID)

	c := findConflict(t, res.Conflicts, "cards[c3]")
	assert.Equal(t, ConflictRemoteOnly, c.Type)
	assert.Equal(t, ResolutionTakeIncoming, c.Resolution)
	assert.False(t, res.HasDeferred())
}

func TestMergePureReorder(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards[0], incoming.Cards[1] = incoming.Cards[1], incoming.Cards[0]

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	// A reorder is a single deck-level action, not an add/remove pair.
	assert.Empty(t, res.Conflicts)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "cards", res.Actions[0].Path)
	assert.Equal(t, ResolutionTakeIncoming, res.Actions[0].Resolution)

	require.Len(t, res.Deck.Cards, 2)
	assert.Equal(t, "c2", res.Deck.Cards[0].ID)
	assert.Equal(t, "c1", res.Deck.Cards[1].ID)
}

func TestMergeTieDefers(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(older)
	incoming.Title = "Heroes v2"

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.True(t, res.HasDeferred())
	assert.Equal(t, "Heroes", res.Deck.Title, "deferred keeps the local value")

	c := findConflict(t, res.Conflicts, "title")
	assert.Equal(t, ConflictMetadata, c.Type)
	assert.Equal(t, ResolutionDeferred, c.Resolution)
	assert.Equal(t, RuleTie, findAction(t, res.Actions, "title").Rule)
}

func TestMergeMissingTimestampDefers(t *testing.T) {
	local := baseDeck(time.Time{})
	incoming := baseDeck(newer)
	incoming.Cards[0].Stats[0].Value = 12

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.True(t, res.HasDeferred())
	assert.Equal(t, 10, res.Deck.Cards[0].Stats[0].Value)
	assert.Equal(t, RuleTie, findAction(t, res.Actions, "cards[c1].stats[s1].value").Rule)
}

func TestMergeOverrideBeatsTimestamps(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(older) // tie would defer
	incoming.Title = "Heroes v2"

	policy := Policy{Overrides: map[string]Resolution{
		"title": ResolutionTakeIncoming,
	}}
	res, err := Merge(local, incoming, policy)
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "Heroes v2", res.Deck.Title)
	assert.Equal(t, RuleOverride, findAction(t, res.Actions, "title").Rule)
}

func TestMergeBothConcatenatesText(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards[0].Description = "Knows the old roads."

	policy := Policy{Overrides: map[string]Resolution{
		"cards[c1].description": ResolutionMergeBoth,
	}}
	res, err := Merge(local, incoming, policy)
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "Swift scout.\n\nKnows the old roads.", res.Deck.Cards[0].Description)
}

func TestMergeBothOnNonTextDefers(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards[0].Stats[0].Value = 12

	policy := Policy{Overrides: map[string]Resolution{
		"cards[c1].stats[s1].value": ResolutionMergeBoth,
	}}
	res, err := Merge(local, incoming, policy)
	require.NoError(t, err)

	assert.True(t, res.HasDeferred())
	assert.Equal(t, 10, res.Deck.Cards[0].Stats[0].Value)
	c := findConflict(t, res.Conflicts, "cards[c1].stats[s1].value")
	assert.Equal(t, ConflictField, c.Type)
}

func TestMergeTraitFieldDivergence(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards[0].Traits[0].Public = false

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.False(t, res.Deck.Cards[0].Traits[0].Public)
	a := findAction(t, res.Actions, "cards[c1].traits[t1].public")
	assert.Equal(t, ResolutionTakeIncoming, a.Resolution)
}

func TestMergeDeckIDMismatchKeepsLocal(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.ID = "d2"

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	assert.Equal(t, "d1", res.Deck.ID)
	a := findAction(t, res.Actions, "id")
	assert.Equal(t, RuleIdentity, a.Rule)
	assert.Equal(t, ResolutionKeepLocal, a.Resolution)
}

func TestMergeDuplicateIDsPairByOccurrence(t *testing.T) {
	local := baseDeck(older)
	local.Cards = append(local.Cards, model.Card{ID: "c1", Title: "Aria copy"})
	incoming := baseDeck(newer)
	incoming.Cards = append(incoming.Cards, model.Card{ID: "c1", Title: "Aria copy v2"})

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	require.Len(t, res.Deck.Cards, 3)
	assert.Equal(t, "Aria copy v2", res.Deck.Cards[2].Title)
	a := findAction(t, res.Actions, "cards[c1#1].title")
	assert.Equal(t, ResolutionTakeIncoming, a.Resolution)
}

func TestMergeDuplicateIDExtraBecomesOneSided(t *testing.T) {
	local := baseDeck(older)
	incoming := baseDeck(newer)
	incoming.Cards = append(incoming.Cards, model.Card{ID: "c1", Title: "Aria copy"})

	res, err := Merge(local, incoming, Policy{})
	require.NoError(t, err)

	require.Len(t, res.Deck.Cards, 3)
	c := findConflict(t, res.Conflicts, "cards[c1#1]")
	assert.Equal(t, ConflictRemoteOnly, c.Type)
}

func TestMergeRejectsInvalidInput(t *testing.T) {
	local := baseDeck(older)
	bad := baseDeck(newer)
	bad.Cards[0].ID = ""

	_, err := Merge(local, bad, Policy{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cards[0].id", verr.Path)
}

func TestMergeRejectsInvalidPolicy(t *testing.T) {
	policy := Policy{Overrides: map[string]Resolution{
		"title": Resolution("flip-a-coin"),
	}}
	_, err := Merge(baseDeck(older), baseDeck(newer), policy)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Path)
}

func TestParseOverrides(t *testing.T) {
	p, err := ParseOverrides(map[string]string{"title": "merge-both"})
	require.NoError(t, err)
	assert.Equal(t, ResolutionMergeBoth, p.Overrides["title"])

	_, err = ParseOverrides(map[string]string{"title": "bogus"})
	assert.Error(t, err)

	p, err = ParseOverrides(nil)
	require.NoError(t, err)
	assert.Nil(t, p.Overrides)
}
