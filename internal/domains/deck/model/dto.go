package model

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// ShareURLModeHash / ShareURLModeQuery select where the payload is embedded.
// Hash is the default; query exists for contexts that strip fragments.
const (
	ShareURLModeHash  = "hash"
	ShareURLModeQuery = "query"
)

type CreateShareURLRequest struct {
	Mode string `json:"mode,omitempty"`
}

func (req CreateShareURLRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Mode, validation.In(ShareURLModeHash, ShareURLModeQuery)),
	)
}

type ImportFromURLRequest struct {
	URL string `json:"url"`
	// Overrides maps a conflict path (e.g. "title", "cards[c2].stats[s1].value")
	// to a resolution chosen by the user; it takes precedence over policy.
	Overrides map[string]string `json:"overrides,omitempty"`
}

func (req ImportFromURLRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.URL, validation.Required, is.URL),
	)
}

type ImportJSONRequest struct {
	Data      json.RawMessage   `json:"data"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

func (req ImportJSONRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Data, validation.Required),
	)
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type ShareURLResponse struct {
	URL           string `json:"url"`
	Length        int    `json:"length"`
	EstimatedSize int    `json:"estimated_size"`
	TooLong       bool   `json:"too_long"`
}
