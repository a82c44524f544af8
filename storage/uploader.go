package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUnsupportedContentType is returned for uploads outside the image
// types the platform accepts for team logos.
var ErrUnsupportedContentType = errors.New("unsupported content type")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ExtensionForContentType maps an accepted image MIME type to the file
// extension used when building object keys.
func ExtensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/png":
		return ".png", nil
	case "image/jpeg":
		return ".jpg", nil
	case "image/webp":
		return ".webp", nil
	case "image/gif":
		return ".gif", nil
	default:
		return "", ErrUnsupportedContentType
	}
}
