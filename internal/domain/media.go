package domain

import (
	"io"
	"strings"
)

type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
)

// MediaTypeFor classifies a MIME type. ok is false for anything that is not an image or video.
func MediaTypeFor(contentType string) (MediaType, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage, true
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo, true
	}
	return "", false
}

type OwnerKind string

const (
	OwnerProduct OwnerKind = "product"
	OwnerVariant OwnerKind = "variant"
)

// MediaOwner scopes media operations to a product or a variant.
type MediaOwner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

type MediaItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Type      MediaType `json:"type"`
	SortOrder int       `json:"sortOrder"`
	IsPrimary bool      `json:"isPrimary"`
}

// MediaStats is always taken from the catalog API, never derived from a local list.
type MediaStats struct {
	Total     int `json:"total"`
	Images    int `json:"images"`
	Videos    int `json:"videos"`
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

// Normalize recomputes Remaining and clamps it at zero.
func (s MediaStats) Normalize() MediaStats {
	s.Remaining = s.Max - s.Total
	if s.Remaining < 0 {
		s.Remaining = 0
	}
	return s
}

// MediaFile is one file of an upload batch.
type MediaFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MarkPrimary returns a copy of items where only mediaID is primary.
// Every flag is rewritten in one pass so the result never holds two primaries.
func MarkPrimary(items []MediaItem, mediaID string) []MediaItem {
	out := make([]MediaItem, len(items))
	for i, item := range items {
		item.IsPrimary = item.ID == mediaID
		out[i] = item
	}
	return out
}

func FindMedia(items []MediaItem, mediaID string) int {
	for i, item := range items {
		if item.ID == mediaID {
			return i
		}
	}
	return -1
}

func RemoveMedia(items []MediaItem, mediaID string) []MediaItem {
	out := items[:0:0]
	for _, item := range items {
		if item.ID != mediaID {
			out = append(out, item)
		}
	}
	return out
}
