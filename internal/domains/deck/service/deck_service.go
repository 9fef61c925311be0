package service

import (
	"context"
	"fmt"
	"time"

	"deckforge-backend/internal/config"
	"deckforge-backend/internal/domains/deck/export"
	"deckforge-backend/internal/domains/deck/merge"
	"deckforge-backend/internal/domains/deck/model"
	"deckforge-backend/internal/domains/deck/repository"
	"deckforge-backend/internal/domains/deck/share"
	"deckforge-backend/pkg/ident"
)

// =====================================================
// DECK SERVICE IMPLEMENTATION
// =====================================================

type deckService struct {
	repo      repository.DeckRepository
	blobs     BlobStore
	images    ImageNormalizer
	telemetry Telemetry
	ids       ident.Source
	shareCfg  config.ShareConfig

	now func() time.Time
}

func NewDeckService(
	repo repository.DeckRepository,
	blobs BlobStore,
	images ImageNormalizer,
	telemetry Telemetry,
	ids ident.Source,
	shareCfg config.ShareConfig,
) DeckService {
	return &deckService{
		repo:      repo,
		blobs:     blobs,
		images:    images,
		telemetry: telemetry,
		ids:       ids,
		shareCfg:  shareCfg,
		now:       time.Now,
	}
}

// =====================================================
// CRUD
// =====================================================

func (s *deckService) ListDecks(ctx context.Context) ([]model.Deck, error) {
	decks, err := s.repo.GetAllDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, id string) (*model.Deck, error) {
	d, err := s.repo.GetDeck(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}
	if d == nil {
		return nil, model.ErrDeckNotFound
	}
	return d, nil
}

func (s *deckService) SaveDeck(ctx context.Context, d model.Deck) (model.Deck, error) {
	d = d.Clone()
	if d.ID == "" {
		d.ID = s.ids.GlobalID()
	}
	s.fillLocalKeys(&d)
	if err := d.Validate(); err != nil {
		return model.Deck{}, err
	}

	now := s.now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.ModifiedAt = now
	if d.Theme == "" {
		d.Theme = model.DefaultTheme
	}
	if d.Layout == "" {
		d.Layout = model.DefaultLayout
	}

	if err := s.repo.SaveDeck(ctx, d); err != nil {
		return model.Deck{}, fmt.Errorf("save deck: %w", err)
	}
	return d, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id string) error {
	if err := s.repo.DeleteDeck(ctx, id); err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	return nil
}

// fillLocalKeys assigns local keys to entities the editor created without
// one.
func (s *deckService) fillLocalKeys(d *model.Deck) {
	for i := range d.Cards {
		c := &d.Cards[i]
		if c.ID == "" {
			c.ID = s.ids.LocalKey()
		}
		for j := range c.Traits {
			if c.Traits[j].ID == "" {
				c.Traits[j].ID = s.ids.LocalKey()
			}
		}
		for j := range c.Stats {
			if c.Stats[j].ID == "" {
				c.Stats[j].ID = s.ids.LocalKey()
			}
		}
	}
}

// =====================================================
// SHARING
// =====================================================

func (s *deckService) CreateShareURL(ctx context.Context, deckID, mode string) (*model.ShareURLResponse, error) {
	d, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	estimated := share.EstimateShareableSize(*d)

	// Size guard runs before any URL is built; an oversized deck comes
	// back flagged so the caller can offer JSON export instead.
	if predicted := share.EstimateShareURLLength(s.shareCfg.BaseURL, *d); predicted > s.shareCfg.MaxURLLength {
		return &model.ShareURLResponse{
			Length:        predicted,
			EstimatedSize: estimated,
			TooLong:       true,
		}, nil
	}

	url, err := share.GenerateShareURL(s.shareCfg.BaseURL, *d, mode)
	if err != nil {
		return nil, err
	}

	s.telemetry.RecordShare(ctx, d.ID)
	return &model.ShareURLResponse{
		URL:           url,
		Length:        len(url),
		EstimatedSize: estimated,
		TooLong:       share.IsShareURLTooLong(url, s.shareCfg.MaxURLLength),
	}, nil
}

func (s *deckService) RenderShareQR(ctx context.Context, deckID string) ([]byte, error) {
	resp, err := s.CreateShareURL(ctx, deckID, model.ShareURLModeHash)
	if err != nil {
		return nil, err
	}
	if resp.TooLong {
		return nil, model.NewValidationError("deck", "deck is too large for a share URL")
	}
	return share.RenderQRCode(resp.URL, s.shareCfg.QRSize)
}

func (s *deckService) ImportFromURL(ctx context.Context, req model.ImportFromURLRequest) (*ImportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	incoming, err := share.ImportFromURL(req.URL)
	if err != nil {
		return nil, err
	}
	policy, err := merge.ParseOverrides(req.Overrides)
	if err != nil {
		return nil, err
	}
	return s.adoptIncoming(ctx, incoming, policy)
}

// =====================================================
// JSON EXPORT / IMPORT
// =====================================================

func (s *deckService) ExportDeck(ctx context.Context, deckID string, complete bool) (*ExportResult, error) {
	d, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	var doc export.DeckExport
	if complete {
		blobs, err := s.collectBlobs(ctx, *d)
		if err != nil {
			return nil, err
		}
		doc, err = export.ExportDeck(*d, blobs, s.now())
		if err != nil {
			return nil, err
		}
	} else {
		doc, err = export.ExportDeckLight(*d)
		if err != nil {
			return nil, err
		}
	}

	return &ExportResult{
		Filename: export.CreateDeckFilename(doc),
		Export:   doc,
	}, nil
}

func (s *deckService) collectBlobs(ctx context.Context, d model.Deck) (map[string]export.Blob, error) {
	blobs := map[string]export.Blob{}
	for _, c := range d.Cards {
		if c.Image == nil || c.Image.BlobKey == "" {
			continue
		}
		key := c.Image.BlobKey
		if _, ok := blobs[key]; ok {
			continue
		}
		content, mime, err := s.blobs.Download(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch blob %s: %w", key, err)
		}
		blobs[key] = export.Blob{MimeType: mime, Content: content}
	}
	return blobs, nil
}

func (s *deckService) ImportFromJSON(ctx context.Context, req model.ImportJSONRequest) (*ImportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	incoming, blobs, err := export.ImportDeckFromJSON(req.Data)
	if err != nil {
		return nil, err
	}
	policy, err := merge.ParseOverrides(req.Overrides)
	if err != nil {
		return nil, err
	}

	// Blobs are normalized and stored before the deck is reconciled; blob
	// writes are content-addressed by key and harmless if the merge is
	// later deferred.
	for key, blob := range blobs {
		data, mime, err := s.images.Normalize(blob.Content)
		if err != nil {
			return nil, model.NewValidationError("blobs["+key+"]", err.Error())
		}
		if err := s.blobs.Upload(ctx, key, data, mime); err != nil {
			return nil, fmt.Errorf("store blob %s: %w", key, err)
		}
	}

	return s.adoptIncoming(ctx, incoming, policy)
}

// =====================================================
// RECONCILIATION
// =====================================================

// adoptIncoming lands an imported deck: plain save when the deck is new,
// merge against the stored copy when it is not. A result with deferred
// conflicts is returned unpersisted; the caller re-imports with overrides
// once the user has decided.
func (s *deckService) adoptIncoming(ctx context.Context, incoming model.Deck, policy merge.Policy) (*ImportResult, error) {
	if err := incoming.Validate(); err != nil {
		return nil, err
	}

	local, err := s.repo.GetDeck(ctx, incoming.ID)
	if err != nil {
		return nil, fmt.Errorf("load local deck: %w", err)
	}

	if local == nil {
		d := incoming.Clone()
		if d.ModifiedAt.IsZero() {
			d.ModifiedAt = s.now().UTC()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = d.ModifiedAt
		}
		if err := s.repo.SaveDeck(ctx, d); err != nil {
			return nil, fmt.Errorf("save imported deck: %w", err)
		}
		s.telemetry.RecordImport(ctx, d.ID)
		return &ImportResult{Deck: d, Persisted: true}, nil
	}

	result, err := merge.Merge(*local, incoming, policy)
	if err != nil {
		return nil, err
	}

	out := &ImportResult{
		Deck:      result.Deck,
		Merged:    true,
		Conflicts: result.Conflicts,
		Actions:   result.Actions,
	}
	if result.HasDeferred() {
		return out, nil
	}

	if err := s.repo.SaveDeck(ctx, result.Deck); err != nil {
		return nil, fmt.Errorf("save merged deck: %w", err)
	}
	out.Persisted = true
	s.telemetry.RecordImport(ctx, result.Deck.ID)
	return out, nil
}
