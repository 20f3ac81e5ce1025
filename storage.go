package machina

import (
	"context"
	"io"
	"strings"
)

// StoredObject describes a file after it has been written to storage.
// Providers may recompress images, so Size reflects the stored bytes,
// not the uploaded bytes.
type StoredObject struct {
	URL         string
	Size        int64
	ContentType string
}

// FileStorage defines operations for file storage.
type FileStorage interface {
	// Upload writes a file under key and returns the stored object.
	// The contentType should be a valid MIME type (e.g., "image/jpeg").
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (*StoredObject, error)

	// Delete removes a file from storage.
	// Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a stored file.
	GetURL(key string) string

	// Exists checks if a file exists in storage.
	Exists(ctx context.Context, key string) (bool, error)
}

// KeyFromURL extracts the storage key (filename) from a public URL by
// taking the trailing path segment. Edit payloads reference retained
// photos by URL, so this is how retention sets are computed.
func KeyFromURL(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// StorageConfig holds configuration for file storage.
type StorageConfig struct {
	// Provider is the storage provider ("local" or "s3").
	Provider string

	// Local storage configuration
	LocalPath string
	LocalURL  string

	// S3 storage configuration
	S3Bucket  string
	S3Region  string
	S3BaseURL string
}

// Accepted content types for uploads.
var AcceptedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

// MaxUploadSize is the maximum allowed file size (5MB).
const MaxUploadSize = 5 * 1024 * 1024

// IsAcceptedImageType checks if a content type is accepted.
func IsAcceptedImageType(contentType string) bool {
	for _, t := range AcceptedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
