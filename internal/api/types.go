package api

import (
	"errors"
	"strings"
)

// GenerationRequest is the payload shared by the slogan and poster
// endpoints. Format is only meaningful for posters and is omitted from the
// wire body when empty.
type GenerationRequest struct {
	BusinessType       string `json:"business_type"`
	AdType             string `json:"ad_type"`
	ProductDescription string `json:"product_description"`
	Language           string `json:"language"`
	Format             string `json:"format,omitempty"`
}

// ErrMissingFields is returned by Validate when the required fields are
// empty after trimming. No request carrying it is ever dispatched.
var ErrMissingFields = errors.New("business name and product description are required")

// Normalize trims surrounding whitespace from every textual field and
// defaults the language to English.
func (r *GenerationRequest) Normalize() {
	r.BusinessType = strings.TrimSpace(r.BusinessType)
	r.AdType = strings.TrimSpace(r.AdType)
	r.ProductDescription = strings.TrimSpace(r.ProductDescription)
	r.Language = strings.TrimSpace(r.Language)
	r.Format = strings.TrimSpace(r.Format)
	if r.Language == "" {
		r.Language = "English"
	}
}

// Validate normalizes the request and reports whether it may be sent.
func (r *GenerationRequest) Validate() error {
	r.Normalize()
	if r.BusinessType == "" || r.ProductDescription == "" {
		return ErrMissingFields
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AnalysisResult is the successful response of /analyze-image.
type AnalysisResult struct {
	BusinessType string
	Description  string
}

// SloganResult is the successful response of /generate-slogan.
type SloganResult struct {
	Slogan string
}

// PosterResult is the successful response of /generate-poster. ImageURL may
// be an https URL or a base64 data: URL.
type PosterResult struct {
	ImageURL string
	Slogan   string
}
