package repository

import (
	"context"

	"deckforge-backend/internal/domains/deck/model"
)

// DeckRepository is the narrow persistence contract the deck domain
// consumes. It trades only in plain Deck values; storage internals stay
// behind it.
type DeckRepository interface {
	GetAllDecks(ctx context.Context) ([]model.Deck, error)
	// GetDeck returns (nil, nil) when no deck has the id.
	GetDeck(ctx context.Context, id string) (*model.Deck, error)
	// SaveDeck upserts by deck id.
	SaveDeck(ctx context.Context, d model.Deck) error
	DeleteDeck(ctx context.Context, id string) error
}
