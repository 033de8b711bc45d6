package api

import (
	"time"

	"github.com/starford/perthro/internal/opener"
)

// OpenRequest is the request body for opening an image. Exactly one of
// Element (outer HTML of the double-clicked element) or Ref (a raw image
// reference) must be set; Element wins when both are present.
type OpenRequest struct {
	Element string `json:"element,omitempty" example:"<img src=\"images/photo.png\">"`
	Ref     string `json:"ref,omitempty" example:"images/photo.png"`
}

// ResolveRequest is the request body for a dry-run resolution.
type ResolveRequest struct {
	Ref string `json:"ref" example:"[[photo]]" validate:"required"`
}

// Outcome is the terminal result of an open or resolve attempt (aliased
// from the domain layer).
type Outcome = opener.Outcome

// ImageItem is a single entry in an image listing.
type ImageItem struct {
	Path    string    `json:"path" example:"images/photo.png" validate:"required"`
	Name    string    `json:"name" example:"photo.png" validate:"required"`
	Size    int64     `json:"size" example:"12345" validate:"required"`
	ModTime time.Time `json:"mtime"`
}

// ImageListResponse wraps image listings.
type ImageListResponse struct {
	Images []ImageItem `json:"images" validate:"required"`
	Total  int         `json:"total" example:"3" validate:"required"`
}
