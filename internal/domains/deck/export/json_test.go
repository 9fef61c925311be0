package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckforge-backend/internal/domains/deck/model"
)

func exportDeck() model.Deck {
	return model.Deck{
		ID:         "d1",
		Title:      "Heroes",
		Theme:      "dark",
		Layout:     model.DefaultLayout,
		ModifiedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Cards: []model.Card{
			{
				ID:    "c1",
				Title: "Aria",
				Image: &model.CardImage{BlobKey: "blob-aria"},
				Stats: []model.Stat{
					{ID: "s1", Title: "HP", Value: 10, Tracked: true, Public: true},
				},
			},
			{
				ID:    "c2",
				Title: "Borin",
				Image: &model.CardImage{URL: "https://img.example/borin.png", BlobKey: "blob-borin"},
			},
			{
				ID:    "c3",
				Title: "Cale",
				// Same portrait as Aria; the blob table stores it once.
				Image: &model.CardImage{BlobKey: "blob-aria"},
			},
		},
	}
}

func exportBlobs() map[string]Blob {
	return map[string]Blob{
		"blob-aria":  {MimeType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}},
		"blob-borin": {MimeType: "image/jpeg", Content: []byte{0xff, 0xd8, 0xff}},
	}
}

func TestExportCompleteRoundTrip(t *testing.T) {
	d := exportDeck()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	doc, err := ExportDeck(d, exportBlobs(), now)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, doc.Version)
	require.NotNil(t, doc.ExportedAt)
	assert.Equal(t, now, *doc.ExportedAt)

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.True(t, IsCompleteExport(data))

	back, blobs, err := ImportDeckFromJSON(data)
	require.NoError(t, err)
	assert.True(t, model.Equivalent(d, back))
	assert.Equal(t, d.ModifiedAt, back.ModifiedAt)
	require.Len(t, blobs, 2)
	assert.Equal(t, exportBlobs()["blob-aria"], blobs["blob-aria"])
	assert.Equal(t, exportBlobs()["blob-borin"], blobs["blob-borin"])
}

func TestExportDeduplicatesSharedBlobs(t *testing.T) {
	doc, err := ExportDeck(exportDeck(), exportBlobs(), time.Time{})
	require.NoError(t, err)

	assert.Nil(t, doc.ExportedAt)
	require.Len(t, doc.Blobs, 2)
	assert.Equal(t, "blob-aria", doc.Blobs[0].Key)
	assert.Equal(t, "blob-borin", doc.Blobs[1].Key)
}

func TestExportMissingBlobContent(t *testing.T) {
	blobs := exportBlobs()
	delete(blobs, "blob-borin")

	_, err := ExportDeck(exportDeck(), blobs, time.Time{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cards[1].image.blob_key", verr.Path)
}

func TestExportLightStripsBlobOnlyImages(t *testing.T) {
	doc, err := ExportDeckLight(exportDeck())
	require.NoError(t, err)

	assert.Empty(t, doc.Blobs)
	assert.Nil(t, doc.Deck.Cards[0].Image)
	require.NotNil(t, doc.Deck.Cards[1].Image)
	assert.Equal(t, "https://img.example/borin.png", doc.Deck.Cards[1].Image.URL)
	assert.Empty(t, doc.Deck.Cards[1].Image.BlobKey)
	assert.Nil(t, doc.Deck.Cards[2].Image)

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.False(t, IsCompleteExport(data))

	back, blobs, err := ImportDeckFromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, blobs)
	assert.Nil(t, back.Cards[0].Image)
}

func TestImportMalformedJSON(t *testing.T) {
	_, _, err := ImportDeckFromJSON([]byte("{not json"))
	var derr *model.DecodingError
	require.ErrorAs(t, err, &derr)
}

func TestImportMissingVersion(t *testing.T) {
	_, _, err := ImportDeckFromJSON([]byte(`{"deck":{"id":"d1"}}`))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "version", verr.Path)
}

func TestImportUnsupportedVersion(t *testing.T) {
	_, _, err := ImportDeckFromJSON([]byte(`{"version":99,"deck":{"id":"d1"}}`))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "version", verr.Path)
	assert.Contains(t, verr.Message, "99")
}

func TestImportMissingDeck(t *testing.T) {
	_, _, err := ImportDeckFromJSON([]byte(`{"version":1}`))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "deck", verr.Path)
}

func TestImportInvalidDeckPathIsPrefixed(t *testing.T) {
	_, _, err := ImportDeckFromJSON([]byte(`{"version":1,"deck":{"id":"d1","cards":[{"title":"Aria"}]}}`))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "deck.cards[0].id", verr.Path)
}

func TestImportUnresolvedBlobReference(t *testing.T) {
	doc := []byte(`{
		"version": 1,
		"deck": {
			"id": "d1",
			"cards": [{"id": "c1", "image": {"blob_key": "gone"}}]
		}
	}`)

	_, _, err := ImportDeckFromJSON(doc)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "deck.cards[0].image.blob_key", verr.Path)
}

func TestImportBlobTableValidation(t *testing.T) {
	cases := []struct {
		name string
		blob string
		path string
	}{
		{"missing key", `{"mime_type":"image/png","content":"AQ=="}`, "blobs[0].key"},
		{"missing content", `{"key":"b1","mime_type":"image/png"}`, "blobs[0].content"},
		{"missing mime type", `{"key":"b1","content":"AQ=="}`, "blobs[0].mime_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := []byte(`{"version":1,"deck":{"id":"d1"},"blobs":[` + tc.blob + `]}`)
			_, _, err := ImportDeckFromJSON(doc)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.path, verr.Path)
		})
	}
}

func TestImportDuplicateBlobKey(t *testing.T) {
	doc := []byte(`{
		"version": 1,
		"deck": {"id": "d1"},
		"blobs": [
			{"key": "b1", "mime_type": "image/png", "content": "AQ=="},
			{"key": "b1", "mime_type": "image/png", "content": "Ag=="}
		]
	}`)

	_, _, err := ImportDeckFromJSON(doc)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "blobs[1].key", verr.Path)
}

func TestCreateDeckFilename(t *testing.T) {
	doc, err := ExportDeckLight(exportDeck())
	require.NoError(t, err)
	assert.Equal(t, "heroes-2026-03-14-d1.json", CreateDeckFilename(doc))
}

func TestCreateDeckFilenameFallbacks(t *testing.T) {
	doc := DeckExport{Deck: model.Deck{ID: "!!!", Title: "   "}}
	assert.Equal(t, "deck.json", CreateDeckFilename(doc))

	doc = DeckExport{Deck: model.Deck{ID: "abcdef123456", Title: "Épée & Bouclier"}}
	assert.Equal(t, "epee-bouclier-abcdef12.json", CreateDeckFilename(doc))
}
