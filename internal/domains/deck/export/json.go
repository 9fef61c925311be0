package export

import (
	"encoding/json"
	"fmt"
	"time"

	"deckforge-backend/internal/domains/deck/model"
)

// =====================================================
// JSON EXPORT FORMAT
// =====================================================
//
// A self-contained document viable as a standalone file: format version,
// deck with its ordered cards, and (in the complete variant) the binary
// blobs behind card images inlined as self-describing records. Cards
// reference blobs by stable key; the blob table sits at the top level so a
// blob shared by several cards is stored once.
//
// Two variants exist and are auto-detected on import by the presence of
// the blob table: "light" (image fields are external references or
// omitted) and "complete" (blobs embedded).

// ExportVersion is the current format version. Importers accept only
// versions they know.
const ExportVersion = 1

type DeckExport struct {
	Version    int          `json:"version"`
	ExportedAt *time.Time   `json:"exported_at,omitempty"`
	Deck       model.Deck   `json:"deck"`
	Blobs      []BlobRecord `json:"blobs,omitempty"`
}

// BlobRecord inlines one binary blob. Content marshals as base64.
type BlobRecord struct {
	Key      string `json:"key"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"content"`
}

// Blob is binary content plus its mime type, outside the wire format.
type Blob struct {
	MimeType string
	Content  []byte
}

// =====================================================
// EXPORT
// =====================================================

// ExportDeck builds the complete variant. blobs must contain an entry for
// every blob key the deck's cards reference; a missing entry fails with a
// ValidationError naming the referencing card.
func ExportDeck(d model.Deck, blobs map[string]Blob, exportedAt time.Time) (DeckExport, error) {
	if err := d.Validate(); err != nil {
		return DeckExport{}, err
	}
	out := DeckExport{
		Version: ExportVersion,
		Deck:    d.Clone(),
	}
	if !exportedAt.IsZero() {
		t := exportedAt.UTC()
		out.ExportedAt = &t
	}
	seen := map[string]bool{}
	for i, c := range d.Cards {
		if c.Image == nil || c.Image.BlobKey == "" {
			continue
		}
		key := c.Image.BlobKey
		if seen[key] {
			continue
		}
		blob, ok := blobs[key]
		if !ok {
			return DeckExport{}, model.NewValidationError(
				fmt.Sprintf("cards[%d].image.blob_key", i),
				fmt.Sprintf("no blob content for key %q", key),
			)
		}
		seen[key] = true
		out.Blobs = append(out.Blobs, BlobRecord{
			Key:      key,
			MimeType: blob.MimeType,
			Content:  blob.Content,
		})
	}
	return out, nil
}

// ExportDeckLight builds the URL-style variant: no embedded blobs. Images
// backed only by a blob are dropped; external references survive.
func ExportDeckLight(d model.Deck) (DeckExport, error) {
	if err := d.Validate(); err != nil {
		return DeckExport{}, err
	}
	out := DeckExport{
		Version: ExportVersion,
		Deck:    d.Clone(),
	}
	for i := range out.Deck.Cards {
		img := out.Deck.Cards[i].Image
		if img == nil {
			continue
		}
		if img.URL == "" {
			out.Deck.Cards[i].Image = nil
		} else {
			out.Deck.Cards[i].Image = &model.CardImage{URL: img.URL}
		}
	}
	return out, nil
}

// Marshal renders the export document as indented JSON, ready to be
// written to a file a human can edit.
func (e DeckExport) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// =====================================================
// IMPORT
// =====================================================

// rawExport mirrors DeckExport with pointers so missing required fields
// are distinguishable from zero values.
type rawExport struct {
	Version *int         `json:"version"`
	Deck    *model.Deck  `json:"deck"`
	Blobs   []BlobRecord `json:"blobs"`
}

// ImportDeckFromJSON validates the document's structural shape before
// resolving blob references; it fails with a ValidationError naming the
// offending field and never partially applies anything. The returned blob
// map is empty for the light variant.
func ImportDeckFromJSON(data []byte) (model.Deck, map[string]Blob, error) {
	var raw rawExport
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Deck{}, nil, model.NewDecodingError("malformed export document", err)
	}
	if raw.Version == nil {
		return model.Deck{}, nil, model.NewValidationError("version", "required field is missing")
	}
	if *raw.Version != ExportVersion {
		return model.Deck{}, nil, model.NewValidationError("version", fmt.Sprintf("unsupported format version %d", *raw.Version))
	}
	if raw.Deck == nil {
		return model.Deck{}, nil, model.NewValidationError("deck", "required field is missing")
	}
	if err := raw.Deck.Validate(); err != nil {
		if verr, ok := err.(*model.ValidationError); ok {
			return model.Deck{}, nil, model.NewValidationError("deck."+verr.Path, verr.Message)
		}
		return model.Deck{}, nil, err
	}

	blobs := make(map[string]Blob, len(raw.Blobs))
	for i, b := range raw.Blobs {
		switch {
		case b.Key == "":
			return model.Deck{}, nil, model.NewValidationError(fmt.Sprintf("blobs[%d].key", i), "blob key is required")
		case len(b.Content) == 0:
			return model.Deck{}, nil, model.NewValidationError(fmt.Sprintf("blobs[%d].content", i), "blob content is required")
		case b.MimeType == "":
			return model.Deck{}, nil, model.NewValidationError(fmt.Sprintf("blobs[%d].mime_type", i), "blob mime type is required")
		}
		if _, dup := blobs[b.Key]; dup {
			return model.Deck{}, nil, model.NewValidationError(fmt.Sprintf("blobs[%d].key", i), fmt.Sprintf("duplicate blob key %q", b.Key))
		}
		blobs[b.Key] = Blob{MimeType: b.MimeType, Content: b.Content}
	}

	// Every blob reference must resolve. In the light variant (no blob
	// table) blob references are structural errors, not silent omissions.
	for i, c := range raw.Deck.Cards {
		if c.Image == nil || c.Image.BlobKey == "" {
			continue
		}
		if _, ok := blobs[c.Image.BlobKey]; !ok {
			return model.Deck{}, nil, model.NewValidationError(
				fmt.Sprintf("deck.cards[%d].image.blob_key", i),
				fmt.Sprintf("blob %q is not embedded in this document", c.Image.BlobKey),
			)
		}
	}

	return raw.Deck.Clone(), blobs, nil
}

// IsCompleteExport reports whether the document embeds blobs, without
// fully importing it.
func IsCompleteExport(data []byte) bool {
	var raw rawExport
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	return len(raw.Blobs) > 0
}
