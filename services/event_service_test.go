package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildEventCode(t *testing.T) {
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	code := buildEventCode(start, "9f2a77c1-0000-0000-0000-000000000000")
	assert.Equal(t, "KRT-20260315-9F2A", code)
}

func TestBuildEventCodeUsesStartDate(t *testing.T) {
	start := time.Date(2026, 12, 1, 23, 59, 0, 0, time.UTC)
	code := buildEventCode(start, "abcd1234-0000-0000-0000-000000000000")
	assert.Equal(t, "KRT-20261201-ABCD", code)
}

func TestExtensionFromContentType(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":    ".jpg",
		"image/jpg":     ".jpg",
		"image/png":     ".png",
		"image/webp":    ".webp",
		"image/svg+xml": ".svg",
	}
	for contentType, want := range cases {
		ext, err := extensionFromContentType(contentType)
		assert.NoError(t, err, contentType)
		assert.Equal(t, want, ext, contentType)
	}

	_, err := extensionFromContentType("application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImageType)
	_, err = extensionFromContentType("")
	assert.ErrorIs(t, err, ErrUnsupportedImageType)
}
