package model

import (
	"fmt"
	"time"
)

// =====================================================
// DECK AGGREGATE
// =====================================================

// Deck is the root aggregate. It owns its cards exclusively; a Card has no
// existence outside its Deck. The ID is globally unique (UUID v4), card,
// trait and stat IDs are only unique within their immediate parent.
type Deck struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Theme      string       `json:"theme"`
	Layout     string       `json:"layout"`
	Cards      []Card       `json:"cards"`
	CreatedAt  time.Time    `json:"created_at"`
	ModifiedAt time.Time    `json:"modified_at"`
	Published  *PublishMeta `json:"published,omitempty"`
}

// PublishMeta is optional publish metadata set when a deck is made public.
type PublishMeta struct {
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"published_at"`
}

type Card struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	Image       *CardImage `json:"image,omitempty"`
	Traits      []Trait    `json:"traits"`
	Stats       []Stat     `json:"stats"`
}

// CardImage references card art either by external URL or by a key into the
// blob store. Exactly one of the two is normally set; both empty means the
// card has no image.
type CardImage struct {
	URL     string `json:"url,omitempty"`
	BlobKey string `json:"blob_key,omitempty"`
}

type Trait struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type Stat struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Value       int    `json:"value"`
	Tracked     bool   `json:"tracked"`
	Public      bool   `json:"public"`
	Description string `json:"description,omitempty"`
}

// =====================================================
// DEFAULTS
// =====================================================

// Default values supplied by FromShareable when a key is absent from the
// compact form. ToShareable drops fields equal to these, so both directions
// MUST read from this block and nowhere else.
const (
	DefaultTheme  = "classic"
	DefaultLayout = "tarot"

	// Visibility defaults to public; the shareable form marks the
	// exception (private) by key presence.
	DefaultPublic = true

	// Stats are untracked unless the shareable form says otherwise.
	DefaultTracked = false
)

// =====================================================
// STRUCTURAL VALIDATION
// =====================================================

// Validate checks the structural invariants every operation relies on:
// a deck identifier, and local identifiers present on every card, trait
// and stat. It reports the first violation with its path.
//
// Duplicate local IDs are NOT rejected here: they can legitimately occur
// when two decks were edited independently, and the merge engine handles
// them by occurrence matching.
func (d Deck) Validate() error {
	if d.ID == "" {
		return NewValidationError("id", "deck identifier is required")
	}
	for i, c := range d.Cards {
		if c.ID == "" {
			return NewValidationError(fmt.Sprintf("cards[%d].id", i), "card identifier is required")
		}
		for j, t := range c.Traits {
			if t.ID == "" {
				return NewValidationError(fmt.Sprintf("cards[%d].traits[%d].id", i, j), "trait identifier is required")
			}
		}
		for j, s := range c.Stats {
			if s.ID == "" {
				return NewValidationError(fmt.Sprintf("cards[%d].stats[%d].id", i, j), "stat identifier is required")
			}
		}
	}
	return nil
}

// =====================================================
// VALUE SEMANTICS
// =====================================================

// Clone returns a deep copy. The merge engine and the service layer never
// mutate a deck they were given; they work on copies.
func (d Deck) Clone() Deck {
	out := d
	if d.Published != nil {
		p := *d.Published
		out.Published = &p
	}
	out.Cards = make([]Card, len(d.Cards))
	for i, c := range d.Cards {
		out.Cards[i] = c.Clone()
	}
	return out
}

func (c Card) Clone() Card {
	out := c
	if c.Image != nil {
		img := *c.Image
		out.Image = &img
	}
	out.Traits = append([]Trait(nil), c.Traits...)
	out.Stats = append([]Stat(nil), c.Stats...)
	return out
}

// Equivalent reports whether two decks are equal on every user-visible
// field: identifiers, ordering, titles, descriptions, images, visibility
// flags and stat values. Timestamps and publish metadata are excluded;
// they are bookkeeping, not content, and the shareable form does not
// promise to carry them.
func Equivalent(a, b Deck) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Theme != b.Theme || a.Layout != b.Layout {
		return false
	}
	if len(a.Cards) != len(b.Cards) {
		return false
	}
	for i := range a.Cards {
		if !cardsEquivalent(a.Cards[i], b.Cards[i]) {
			return false
		}
	}
	return true
}

func cardsEquivalent(a, b Card) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Subtitle != b.Subtitle || a.Description != b.Description {
		return false
	}
	if !ImagesEqual(a.Image, b.Image) {
		return false
	}
	if len(a.Traits) != len(b.Traits) || len(a.Stats) != len(b.Stats) {
		return false
	}
	for i := range a.Traits {
		if a.Traits[i] != b.Traits[i] {
			return false
		}
	}
	for i := range a.Stats {
		if a.Stats[i] != b.Stats[i] {
			return false
		}
	}
	return true
}

// ImagesEqual treats nil and the all-empty record as the same absent image.
func ImagesEqual(a, b *CardImage) bool {
	if a == nil || b == nil {
		// An all-empty image record carries no content.
		return (a == nil || *a == CardImage{}) && (b == nil || *b == CardImage{})
	}
	return *a == *b
}
