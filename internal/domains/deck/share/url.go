package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"deckforge-backend/internal/domains/deck/model"
)

// =====================================================
// SHARE-URL CODEC
// =====================================================

// ShareParam is the key carrying the payload, in the fragment
// ("#data=...") or the query string ("?data=...").
const ShareParam = "data"

// DefaultMaxURLLength is a conservative ceiling; the oldest mainstream
// browsers cap around 2000 characters.
const DefaultMaxURLLength = 2000

// URLType classifies where a URL carries its share payload.
type URLType string

const (
	URLTypeHash  URLType = "hash"
	URLTypeQuery URLType = "query"
	URLTypeNone  URLType = "none"
)

// GenerateShareURL encodes the deck into a shareable URL on top of baseURL.
// Mode selects fragment (default) or query embedding; query exists for
// embedding contexts that strip fragments.
func GenerateShareURL(baseURL string, d model.Deck, mode string) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	payload, err := encodePayload(d)
	if err != nil {
		return "", err
	}
	if mode == model.ShareURLModeQuery {
		u, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base url: %w", err)
		}
		q := u.Query()
		q.Set(ShareParam, payload)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return baseURL + "#" + ShareParam + "=" + payload, nil
}

func encodePayload(d model.Deck) (string, error) {
	b, err := json.Marshal(ToShareable(d))
	if err != nil {
		return "", fmt.Errorf("marshal shareable deck: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ExtractShareData returns the decoded payload of a share URL, nil when the
// URL carries no recognized payload at all, and a DecodingError when a
// payload is present but malformed. The two cases are deliberately
// distinct: "not a share URL" is routine, a broken payload is not.
func ExtractShareData(rawURL string) (*model.ShareableDeck, error) {
	payload, typ := extractPayload(rawURL)
	if typ == URLTypeNone {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		// Tolerate padded variants produced by older encoders.
		raw, err = base64.URLEncoding.DecodeString(payload)
		if err != nil {
			return nil, model.NewDecodingError("share payload is not valid base64", err)
		}
	}
	s, err := DecodeShareable(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// IsShareURL reports whether the URL carries a share payload.
func IsShareURL(rawURL string) bool {
	return GetShareURLType(rawURL) != URLTypeNone
}

// GetShareURLType reports where the URL carries its payload. Fragment wins
// when both are present, matching the encoder's preference.
func GetShareURLType(rawURL string) URLType {
	_, typ := extractPayload(rawURL)
	return typ
}

func extractPayload(rawURL string) (string, URLType) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", URLTypeNone
	}
	if frag := u.Fragment; strings.HasPrefix(frag, ShareParam+"=") {
		if payload := frag[len(ShareParam)+1:]; payload != "" {
			return payload, URLTypeHash
		}
	}
	if payload := u.Query().Get(ShareParam); payload != "" {
		return payload, URLTypeQuery
	}
	return "", URLTypeNone
}

// EstimateShareURLLength predicts the share URL's length without building
// it, from the pre-encoding size estimate and the base64 expansion factor.
// Callers use it to steer users toward JSON export before encoding work is
// done.
func EstimateShareURLLength(baseURL string, d model.Deck) int {
	encoded := (EstimateShareableSize(d)*4 + 2) / 3 // RawURLEncoding, no padding
	return len(baseURL) + len("#"+ShareParam+"=") + encoded
}

// IsShareURLTooLong reports whether the URL exceeds the given character
// limit (DefaultMaxURLLength when limit is zero or negative). The caller
// decides whether to warn or to fall back to JSON export.
func IsShareURLTooLong(rawURL string, limit int) bool {
	if limit <= 0 {
		limit = DefaultMaxURLLength
	}
	return len(rawURL) > limit
}

// ImportFromURL runs the whole decode pipeline: extract, strict-decode and
// convert back to a canonical deck. It returns model.ErrNotShareURL when
// the URL carries no payload.
func ImportFromURL(rawURL string) (model.Deck, error) {
	s, err := ExtractShareData(rawURL)
	if err != nil {
		return model.Deck{}, err
	}
	if s == nil {
		return model.Deck{}, model.ErrNotShareURL
	}
	return FromShareable(*s)
}
