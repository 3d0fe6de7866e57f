package domain

import (
	"fmt"
	"strings"
)

const (
	MaxImagesPerRequest  = 10
	DefaultMaxImageWidth = 1200
)

type MediaFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidateImages rejects non-image content types and oversized batches.
func ValidateImages(files []MediaFile) error {
	if len(files) > MaxImagesPerRequest {
		return fmt.Errorf("%w: at most %d images per request", ErrValidation, MaxImagesPerRequest)
	}
	for _, f := range files {
		if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
			return fmt.Errorf("%w: invalid file type: %s", ErrValidation, f.Filename)
		}
		if len(f.Data) == 0 {
			return fmt.Errorf("%w: empty file: %s", ErrValidation, f.Filename)
		}
	}
	return nil
}

type UploadOptions struct {
	MaxWidth int
	// Tag groups uploads of a listing, usually its code. Empty means untagged.
	Tag string
}

type StoredMedia struct {
	URL string
	ID  string
}

// ExtractMediaID returns the media id embedded in a stored URL: the last path
// segment up to its first dot. Query strings and fragments are ignored.
func ExtractMediaID(url string) (string, bool) {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	segment := url
	if i := strings.LastIndex(url, "/"); i >= 0 {
		segment = url[i+1:]
	}
	id, _, _ := strings.Cut(segment, ".")
	if id == "" {
		return "", false
	}
	return id, true
}

type CleanupStatus string

const (
	CleanupDeleted CleanupStatus = "deleted"
	CleanupFailed  CleanupStatus = "failed"
	CleanupSkipped CleanupStatus = "skipped"
)

// MediaCleanup is one media delete performed as a side effect of removing a
// listing. Failed items can be retried by media id.
type MediaCleanup struct {
	URL     string        `json:"url"`
	MediaID string        `json:"mediaId,omitempty"`
	Status  CleanupStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

type CleanupReport struct {
	PropertyID string         `json:"propertyId"`
	Items      []MediaCleanup `json:"items"`
}

func (r CleanupReport) Pending() []MediaCleanup {
	var out []MediaCleanup
	for _, it := range r.Items {
		if it.Status == CleanupFailed {
			out = append(out, it)
		}
	}
	return out
}
