package export

import (
	"fmt"
	"strings"

	"deckforge-backend/internal/shared/utils"
)

// CreateDeckFilename derives a deterministic, filesystem-safe filename for
// an export: slugged title, modification date and a short id tail so
// repeated exports of renamed decks rarely collide.
func CreateDeckFilename(d DeckExport) string {
	slug := utils.GenerateSlug(d.Deck.Title)
	if slug == "" {
		slug = "deck"
	}
	parts := []string{slug}
	if !d.Deck.ModifiedAt.IsZero() {
		parts = append(parts, d.Deck.ModifiedAt.Format("2006-01-02"))
	}
	if tail := idTail(d.Deck.ID); tail != "" {
		parts = append(parts, tail)
	}
	return fmt.Sprintf("%s.json", strings.Join(parts, "-"))
}

// idTail keeps the first alphanumeric run of the id, capped at 8 chars.
func idTail(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.ToLower(b.String())
}
