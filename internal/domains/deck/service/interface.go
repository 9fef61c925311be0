package service

import (
	"context"

	"deckforge-backend/internal/domains/deck/export"
	"deckforge-backend/internal/domains/deck/merge"
	"deckforge-backend/internal/domains/deck/model"
)

// =====================================================
// COLLABORATOR CONTRACTS
// =====================================================

// BlobStore is the narrow blob-storage contract (minio in production).
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// ImageNormalizer re-encodes imported card art into a bounded form.
type ImageNormalizer interface {
	Normalize(data []byte) ([]byte, string, error)
}

// Telemetry records analytics events. Implementations must be best-effort:
// they never return errors and never block the primary operation.
type Telemetry interface {
	RecordShare(ctx context.Context, deckID string)
	RecordImport(ctx context.Context, deckID string)
}

// =====================================================
// RESULTS
// =====================================================

// ImportResult is what an import hands back to the editor UI: the deck
// (merged, when a local copy existed), and the conflict list plus audit
// trail the conflict dialog renders. When deferred conflicts remain the
// deck has NOT been persisted; the caller resolves them and re-imports
// with overrides.
type ImportResult struct {
	Deck      model.Deck       `json:"deck"`
	Merged    bool             `json:"merged"`
	Persisted bool             `json:"persisted"`
	Conflicts []merge.Conflict `json:"conflicts,omitempty"`
	Actions   []merge.Action   `json:"actions,omitempty"`
}

type ExportResult struct {
	Filename string            `json:"filename"`
	Export   export.DeckExport `json:"export"`
}

// =====================================================
// SERVICE
// =====================================================

type DeckService interface {
	ListDecks(ctx context.Context) ([]model.Deck, error)
	GetDeck(ctx context.Context, id string) (*model.Deck, error)
	SaveDeck(ctx context.Context, d model.Deck) (model.Deck, error)
	DeleteDeck(ctx context.Context, id string) error

	CreateShareURL(ctx context.Context, deckID, mode string) (*model.ShareURLResponse, error)
	RenderShareQR(ctx context.Context, deckID string) ([]byte, error)
	ImportFromURL(ctx context.Context, req model.ImportFromURLRequest) (*ImportResult, error)

	ExportDeck(ctx context.Context, deckID string, complete bool) (*ExportResult, error)
	ImportFromJSON(ctx context.Context, req model.ImportJSONRequest) (*ImportResult, error)
}
