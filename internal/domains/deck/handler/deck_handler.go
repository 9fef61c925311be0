package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"deckforge-backend/internal/domains/deck/model"
	"deckforge-backend/internal/domains/deck/service"
	"deckforge-backend/internal/shared/response"
)

// =====================================================
// DECK HANDLER
// =====================================================

type DeckHandler struct {
	deckService service.DeckService
}

func NewDeckHandler(deckService service.DeckService) *DeckHandler {
	return &DeckHandler{
		deckService: deckService,
	}
}

// respondError maps domain errors onto HTTP codes. Validation and
// decoding failures are the caller's fault; everything else is ours.
func respondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	var derr *model.DecodingError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, model.ErrCodeValidation, verr.Error())
	case errors.As(err, &derr):
		response.BadRequest(c, model.ErrCodeDecoding, derr.Error())
	case errors.Is(err, model.ErrDeckNotFound):
		response.NotFound(c, "Deck not found")
	case errors.Is(err, model.ErrNotShareURL):
		response.BadRequest(c, model.ErrCodeDecoding, "URL carries no share payload")
	default:
		response.InternalError(c, "Something went wrong")
	}
}

// =====================================================
// DECK CRUD
// =====================================================

// ListDecks returns every stored deck.
// GET /api/v1/decks
func (h *DeckHandler) ListDecks(c *gin.Context) {
	decks, err := h.deckService.ListDecks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, decks)
}

// GetDeck returns one deck by id.
// GET /api/v1/decks/:id
func (h *DeckHandler) GetDeck(c *gin.Context) {
	d, err := h.deckService.GetDeck(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// SaveDeck upserts a deck; ids and timestamps are filled in server-side.
// PUT /api/v1/decks
func (h *DeckHandler) SaveDeck(c *gin.Context) {
	var d model.Deck
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, err.Error())
		return
	}
	saved, err := h.deckService.SaveDeck(c.Request.Context(), d)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, saved)
}

// DeleteDeck removes a deck by id.
// DELETE /api/v1/decks/:id
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	if err := h.deckService.DeleteDeck(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// =====================================================
// SHARING
// =====================================================

// CreateShareURL builds a share URL for a deck. Oversized decks come back
// with too_long=true and no URL.
// POST /api/v1/decks/:id/share
func (h *DeckHandler) CreateShareURL(c *gin.Context) {
	var req model.CreateShareURLRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, model.ErrCodeValidation, err.Error())
			return
		}
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, err.Error())
		return
	}

	resp, err := h.deckService.CreateShareURL(c.Request.Context(), c.Param("id"), req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ShareQR renders the deck's share URL as a PNG QR code.
// GET /api/v1/decks/:id/share/qr
func (h *DeckHandler) ShareQR(c *gin.Context) {
	png, err := h.deckService.RenderShareQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ImportFromURL decodes a share URL and reconciles it against the stored
// deck, if any. Deferred conflicts come back unpersisted for the conflict
// dialog; the client re-posts with overrides.
// POST /api/v1/decks/import/url
func (h *DeckHandler) ImportFromURL(c *gin.Context) {
	var req model.ImportFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, err.Error())
		return
	}
	result, err := h.deckService.ImportFromURL(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// =====================================================
// JSON EXPORT / IMPORT
// =====================================================

// ExportDeck returns the export document plus a suggested filename.
// Complete (blobs embedded) unless ?variant=light.
// GET /api/v1/decks/:id/export
func (h *DeckHandler) ExportDeck(c *gin.Context) {
	complete := c.Query("variant") != "light"
	result, err := h.deckService.ExportDeck(c.Request.Context(), c.Param("id"), complete)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ImportFromJSON imports an export document (light or complete,
// auto-detected), reconciling like the URL path.
// POST /api/v1/decks/import
func (h *DeckHandler) ImportFromJSON(c *gin.Context) {
	var req model.ImportJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, err.Error())
		return
	}
	result, err := h.deckService.ImportFromJSON(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
