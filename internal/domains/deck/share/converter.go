package share

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"deckforge-backend/internal/domains/deck/model"
)

// =====================================================
// SHAREABLE CONVERTER
// =====================================================
//
// Pure, deterministic mapping between the canonical Deck and its compact
// shareable mirror. The rename table lives on the Shareable struct tags,
// the defaults on the model constants; nothing here duplicates either.

// ToShareable converts a deck to its compact form, dropping every field
// equal to its documented default. Blob-backed images never travel in the
// shareable form; only external URLs do.
func ToShareable(d model.Deck) model.ShareableDeck {
	s := model.ShareableDeck{
		ID:    d.ID,
		Title: d.Title,
	}
	if d.Theme != model.DefaultTheme {
		s.Theme = d.Theme
	}
	if d.Layout != model.DefaultLayout {
		s.Layout = d.Layout
	}
	if !d.ModifiedAt.IsZero() {
		s.ModifiedMS = d.ModifiedAt.UnixMilli()
	}
	if len(d.Cards) > 0 {
		s.Cards = make([]model.ShareableCard, len(d.Cards))
		for i, c := range d.Cards {
			s.Cards[i] = cardToShareable(c)
		}
	}
	return s
}

func cardToShareable(c model.Card) model.ShareableCard {
	sc := model.ShareableCard{
		ID:          c.ID,
		Title:       c.Title,
		Subtitle:    c.Subtitle,
		Description: c.Description,
	}
	if c.Image != nil {
		sc.ImageURL = c.Image.URL
	}
	if len(c.Traits) > 0 {
		sc.Traits = make([]model.ShareableTrait, len(c.Traits))
		for i, t := range c.Traits {
			sc.Traits[i] = traitToShareable(t)
		}
	}
	if len(c.Stats) > 0 {
		sc.Stats = make([]model.ShareableStat, len(c.Stats))
		for i, st := range c.Stats {
			sc.Stats[i] = statToShareable(st)
		}
	}
	return sc
}

func traitToShareable(t model.Trait) model.ShareableTrait {
	st := model.ShareableTrait{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
	}
	if t.Public != model.DefaultPublic {
		st.Private = model.FlagSet
	}
	return st
}

func statToShareable(s model.Stat) model.ShareableStat {
	ss := model.ShareableStat{
		ID:          s.ID,
		Title:       s.Title,
		Value:       s.Value,
		Description: s.Description,
	}
	if s.Tracked != model.DefaultTracked {
		ss.Tracked = model.FlagSet
	}
	if s.Public != model.DefaultPublic {
		ss.Private = model.FlagSet
	}
	return ss
}

// FromShareable converts a compact deck back to canonical form, supplying
// the documented default for every absent field. It fails with a
// ValidationError when a required identifier is missing.
func FromShareable(s model.ShareableDeck) (model.Deck, error) {
	if s.ID == "" {
		return model.Deck{}, model.NewValidationError("id", "deck identifier is required")
	}
	d := model.Deck{
		ID:     s.ID,
		Title:  s.Title,
		Theme:  s.Theme,
		Layout: s.Layout,
	}
	if d.Theme == "" {
		d.Theme = model.DefaultTheme
	}
	if d.Layout == "" {
		d.Layout = model.DefaultLayout
	}
	if s.ModifiedMS != 0 {
		d.ModifiedAt = time.UnixMilli(s.ModifiedMS).UTC()
	}
	if len(s.Cards) > 0 {
		d.Cards = make([]model.Card, len(s.Cards))
		for i, sc := range s.Cards {
			c, err := cardFromShareable(sc, fmt.Sprintf("cards[%d]", i))
			if err != nil {
				return model.Deck{}, err
			}
			d.Cards[i] = c
		}
	}
	return d, nil
}

func cardFromShareable(sc model.ShareableCard, path string) (model.Card, error) {
	if sc.ID == "" {
		return model.Card{}, model.NewValidationError(path+".id", "card identifier is required")
	}
	c := model.Card{
		ID:          sc.ID,
		Title:       sc.Title,
		Subtitle:    sc.Subtitle,
		Description: sc.Description,
	}
	if sc.ImageURL != "" {
		c.Image = &model.CardImage{URL: sc.ImageURL}
	}
	if len(sc.Traits) > 0 {
		c.Traits = make([]model.Trait, len(sc.Traits))
		for i, st := range sc.Traits {
			if st.ID == "" {
				return model.Card{}, model.NewValidationError(fmt.Sprintf("%s.traits[%d].id", path, i), "trait identifier is required")
			}
			c.Traits[i] = model.Trait{
				ID:          st.ID,
				Title:       st.Title,
				Description: st.Description,
				Public:      st.Private != model.FlagSet,
			}
		}
	}
	if len(sc.Stats) > 0 {
		c.Stats = make([]model.Stat, len(sc.Stats))
		for i, ss := range sc.Stats {
			if ss.ID == "" {
				return model.Card{}, model.NewValidationError(fmt.Sprintf("%s.stats[%d].id", path, i), "stat identifier is required")
			}
			c.Stats[i] = model.Stat{
				ID:          ss.ID,
				Title:       ss.Title,
				Value:       ss.Value,
				Tracked:     ss.Tracked == model.FlagSet,
				Public:      ss.Private != model.FlagSet,
				Description: ss.Description,
			}
		}
	}
	return c, nil
}

// EstimateShareableSize returns the JSON byte size of the compact form
// before base64 expansion. Callers compare it against URL-length ceilings
// before bothering to build a URL.
func EstimateShareableSize(d model.Deck) int {
	b, err := json.Marshal(ToShareable(d))
	if err != nil {
		return 0
	}
	return len(b)
}

// ValidateRoundTrip is a self-check: it converts the deck to the compact
// form and back, and reports whether the result is equivalent on every
// user-visible field. Primarily for tests.
func ValidateRoundTrip(d model.Deck) bool {
	back, err := FromShareable(ToShareable(d))
	if err != nil {
		return false
	}
	return model.Equivalent(d, back)
}

// =====================================================
// STRICT DECODING
// =====================================================

// DecodeShareable parses shareable JSON strictly: unknown keys and type
// mismatches fail with a ValidationError naming the offending path in
// canonical terms (e.g. "cards[2].stats[0].value"); malformed JSON fails
// with a DecodingError. It never coerces.
func DecodeShareable(data []byte) (model.ShareableDeck, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.ShareableDeck{}, model.NewDecodingError("malformed share payload", err)
	}
	return shareableDeckFromRaw(raw)
}

func shareableDeckFromRaw(raw map[string]any) (model.ShareableDeck, error) {
	var s model.ShareableDeck
	for key, val := range raw {
		switch key {
		case "i":
			v, err := rawString(val, "id")
			if err != nil {
				return s, err
			}
			s.ID = v
		case "t":
			v, err := rawString(val, "title")
			if err != nil {
				return s, err
			}
			s.Title = v
		case "th":
			v, err := rawString(val, "theme")
			if err != nil {
				return s, err
			}
			s.Theme = v
		case "l":
			v, err := rawString(val, "layout")
			if err != nil {
				return s, err
			}
			s.Layout = v
		case "m":
			v, err := rawInt64(val, "modified_at")
			if err != nil {
				return s, err
			}
			s.ModifiedMS = v
		case "c":
			items, err := rawArray(val, "cards")
			if err != nil {
				return s, err
			}
			s.Cards = make([]model.ShareableCard, len(items))
			for i, item := range items {
				card, err := shareableCardFromRaw(item, fmt.Sprintf("cards[%d]", i))
				if err != nil {
					return s, err
				}
				s.Cards[i] = card
			}
		default:
			return s, model.NewValidationError(key, "unknown key")
		}
	}
	return s, nil
}

func shareableCardFromRaw(val any, path string) (model.ShareableCard, error) {
	var c model.ShareableCard
	raw, err := rawObject(val, path)
	if err != nil {
		return c, err
	}
	for key, v := range raw {
		switch key {
		case "i":
			s, err := rawString(v, path+".id")
			if err != nil {
				return c, err
			}
			c.ID = s
		case "t":
			s, err := rawString(v, path+".title")
			if err != nil {
				return c, err
			}
			c.Title = s
		case "s":
			s, err := rawString(v, path+".subtitle")
			if err != nil {
				return c, err
			}
			c.Subtitle = s
		case "d":
			s, err := rawString(v, path+".description")
			if err != nil {
				return c, err
			}
			c.Description = s
		case "img":
			s, err := rawString(v, path+".image")
			if err != nil {
				return c, err
			}
			c.ImageURL = s
		case "tr":
			items, err := rawArray(v, path+".traits")
			if err != nil {
				return c, err
			}
			c.Traits = make([]model.ShareableTrait, len(items))
			for i, item := range items {
				t, err := shareableTraitFromRaw(item, fmt.Sprintf("%s.traits[%d]", path, i))
				if err != nil {
					return c, err
				}
				c.Traits[i] = t
			}
		case "st":
			items, err := rawArray(v, path+".stats")
			if err != nil {
				return c, err
			}
			c.Stats = make([]model.ShareableStat, len(items))
			for i, item := range items {
				st, err := shareableStatFromRaw(item, fmt.Sprintf("%s.stats[%d]", path, i))
				if err != nil {
					return c, err
				}
				c.Stats[i] = st
			}
		default:
			return c, model.NewValidationError(path+"."+key, "unknown key")
		}
	}
	return c, nil
}

func shareableTraitFromRaw(val any, path string) (model.ShareableTrait, error) {
	var t model.ShareableTrait
	raw, err := rawObject(val, path)
	if err != nil {
		return t, err
	}
	for key, v := range raw {
		switch key {
		case "i":
			s, err := rawString(v, path+".id")
			if err != nil {
				return t, err
			}
			t.ID = s
		case "t":
			s, err := rawString(v, path+".title")
			if err != nil {
				return t, err
			}
			t.Title = s
		case "d":
			s, err := rawString(v, path+".description")
			if err != nil {
				return t, err
			}
			t.Description = s
		case "p":
			n, err := rawFlag(v, path+".public")
			if err != nil {
				return t, err
			}
			t.Private = n
		default:
			return t, model.NewValidationError(path+"."+key, "unknown key")
		}
	}
	return t, nil
}

func shareableStatFromRaw(val any, path string) (model.ShareableStat, error) {
	var st model.ShareableStat
	raw, err := rawObject(val, path)
	if err != nil {
		return st, err
	}
	for key, v := range raw {
		switch key {
		case "i":
			s, err := rawString(v, path+".id")
			if err != nil {
				return st, err
			}
			st.ID = s
		case "t":
			s, err := rawString(v, path+".title")
			if err != nil {
				return st, err
			}
			st.Title = s
		case "v":
			n, err := rawInt(v, path+".value")
			if err != nil {
				return st, err
			}
			st.Value = n
		case "k":
			n, err := rawFlag(v, path+".tracked")
			if err != nil {
				return st, err
			}
			st.Tracked = n
		case "p":
			n, err := rawFlag(v, path+".public")
			if err != nil {
				return st, err
			}
			st.Private = n
		case "d":
			s, err := rawString(v, path+".description")
			if err != nil {
				return st, err
			}
			st.Description = s
		default:
			return st, model.NewValidationError(path+"."+key, "unknown key")
		}
	}
	return st, nil
}

// =====================================================
// RAW VALUE HELPERS
// =====================================================

func rawString(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", model.NewValidationError(path, fmt.Sprintf("expected string, got %T", v))
	}
	return s, nil
}

func rawObject(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, model.NewValidationError(path, fmt.Sprintf("expected object, got %T", v))
	}
	return m, nil
}

func rawArray(v any, path string) ([]any, error) {
	a, ok := v.([]any)
	if !ok {
		return nil, model.NewValidationError(path, fmt.Sprintf("expected array, got %T", v))
	}
	return a, nil
}

func rawInt(v any, path string) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, model.NewValidationError(path, fmt.Sprintf("expected integer, got %v", v))
	}
	return int(f), nil
}

func rawInt64(v any, path string) (int64, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, model.NewValidationError(path, fmt.Sprintf("expected integer, got %v", v))
	}
	return int64(f), nil
}

func rawFlag(v any, path string) (int, error) {
	n, err := rawInt(v, path)
	if err != nil {
		return 0, err
	}
	if n != model.FlagSet {
		return 0, model.NewValidationError(path, "flag keys carry 1 when present")
	}
	return n, nil
}
