package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deckforge-backend/internal/domains/deck/model"
)

// postgresRepository stores each deck as a JSONB document. The deck is an
// aggregate that is always read and written whole, so a document column
// beats a relational spread of cards/traits/stats here.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) DeckRepository {
	return &postgresRepository{
		pool: pool,
	}
}

func (r *postgresRepository) GetAllDecks(ctx context.Context) ([]model.Deck, error) {
	query := `
    SELECT doc
    FROM decks
    ORDER BY modified_at DESC
  `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query decks: %w", err)
	}
	defer rows.Close()

	var decks []model.Deck
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan deck row: %w", err)
		}
		var d model.Deck
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("unmarshal deck document: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *postgresRepository) GetDeck(ctx context.Context, id string) (*model.Deck, error) {
	query := `
    SELECT doc
    FROM decks
    WHERE id = $1
  `

	var doc []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query deck %s: %w", id, err)
	}

	var d model.Deck
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("unmarshal deck document: %w", err)
	}
	return &d, nil
}

func (r *postgresRepository) SaveDeck(ctx context.Context, d model.Deck) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck document: %w", err)
	}

	query := `
    INSERT INTO decks (id, doc, created_at, modified_at)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (id) DO UPDATE
    SET doc = EXCLUDED.doc, modified_at = EXCLUDED.modified_at
  `

	if _, err := r.pool.Exec(ctx, query, d.ID, doc, d.CreatedAt, d.ModifiedAt); err != nil {
		return fmt.Errorf("save deck %s: %w", d.ID, err)
	}
	return nil
}

func (r *postgresRepository) DeleteDeck(ctx context.Context, id string) error {
	query := `
    DELETE FROM decks
    WHERE id = $1
  `

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}
	return nil
}
