package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionForContentType(t *testing.T) {
	testCases := []struct {
		contentType string
		extension   string
		ok          bool
	}{
		{"image/png", ".png", true},
		{"image/jpeg", ".jpg", true},
		{"image/webp", ".webp", true},
		{"image/gif", ".gif", true},
		{"image/svg+xml", "", false},
		{"application/pdf", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		ext, err := ExtensionForContentType(tc.contentType)
		if tc.ok {
			assert.NoError(t, err, tc.contentType)
			assert.Equal(t, tc.extension, ext)
		} else {
			assert.ErrorIs(t, err, ErrUnsupportedContentType, tc.contentType)
		}
	}
}
