package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaService_SaveDataURI(t *testing.T) {
	svc := newTestMediaService(t)

	relPath, err := svc.SaveDataURI(testutil.TinyPNGBase64, "recipes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relPath, "recipes/"))
	assert.True(t, strings.HasSuffix(relPath, ".png"))

	fullPath := filepath.Join(svc.cfg.MediaRoot, filepath.FromSlash(relPath))
	info, err := os.Stat(fullPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Same content deduplicates to the same hash-named file
	again, err := svc.SaveDataURI(testutil.TinyPNGBase64, "recipes")
	require.NoError(t, err)
	assert.Equal(t, relPath, again)
}

func TestMediaService_SaveDataURI_Rejections(t *testing.T) {
	svc := newTestMediaService(t)

	tests := []struct {
		name    string
		dataURI string
	}{
		{"not a data URI", "http://example.com/image.png"},
		{"missing base64 marker", "data:image/png,rawbytes"},
		{"unsupported type", "data:image/tiff;base64,AAAA"},
		{"invalid base64", "data:image/png;base64,!!!not-base64!!!"},
		{"not an image", "data:image/png;base64,aGVsbG8gd29ybGQ="},
		{"type mismatch", strings.Replace(testutil.TinyPNGBase64, "image/png", "image/jpeg", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveDataURI(tt.dataURI, "recipes")
			assert.Error(t, err)
		})
	}
}

func TestMediaService_URL(t *testing.T) {
	svc := newTestMediaService(t)

	assert.Equal(t, "http://localhost:8000/media/recipes/abc.png", svc.URL("recipes/abc.png"))
	assert.Empty(t, svc.URL(""))
}

func TestMediaService_Remove(t *testing.T) {
	svc := newTestMediaService(t)

	relPath, err := svc.SaveDataURI(testutil.TinyPNGBase64, "avatars")
	require.NoError(t, err)

	svc.Remove(relPath)
	_, err = os.Stat(filepath.Join(svc.cfg.MediaRoot, filepath.FromSlash(relPath)))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is harmless
	svc.Remove(relPath)
}
