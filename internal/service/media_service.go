// Package service contains the application's business logic.
package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Register decoders for the formats accepted in data URIs.
	_ "image/gif"

	"foodgram/internal/config"
	"foodgram/internal/models"
	"foodgram/internal/observability"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxImageDimension bounds the longest side of a stored image.
const maxImageDimension = 2048

// MediaService decodes base64 data URIs and stores the images on disk
// under the configured media root.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService returns a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveDataURI decodes a "data:image/...;base64,..." payload, validates and
// resizes it, and writes it under <media root>/<subdir>/. The returned path
// is relative to the media root.
func (s *MediaService) SaveDataURI(dataURI, subdir string) (string, error) {
	declaredMime, payload, err := splitDataURI(dataURI)
	if err != nil {
		observability.ImageUploads.WithLabelValues("rejected").Inc()
		return "", err
	}

	maxBytes := s.cfg.ImageMaxUploadSizeMB * 1024 * 1024
	// Base64 inflates by 4/3, so the encoded length bounds the decoded size
	if len(payload) > maxB64Len(maxBytes) {
		observability.ImageUploads.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError(fmt.Sprintf("Image exceeds the %d MB limit", s.cfg.ImageMaxUploadSizeMB))
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		observability.ImageUploads.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("Image payload is not valid base64")
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		observability.ImageUploads.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("Image payload could not be decoded")
	}

	if !formatMatchesMime(format, declaredMime) {
		observability.ImageUploads.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("Image content type mismatch")
	}

	img = resizeToFit(img, maxImageDimension, maxImageDimension)

	encoded, ext, err := encodeImage(img, format)
	if err != nil {
		observability.ImageUploads.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	hash := sha256.Sum256(encoded)
	relPath := filepath.Join(subdir, hex.EncodeToString(hash[:])+ext)
	fullPath := filepath.Join(s.cfg.MediaRoot, relPath)

	if err := writeBytesToFile(fullPath, encoded); err != nil {
		observability.ImageUploads.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	observability.ImageUploads.WithLabelValues("stored").Inc()
	return filepath.ToSlash(relPath), nil
}

// Remove deletes a stored media file. Missing files are not an error.
func (s *MediaService) Remove(relPath string) {
	if relPath == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.cfg.MediaRoot, filepath.FromSlash(relPath)))
}

// URL returns the absolute URL a stored media path is served at.
func (s *MediaService) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/media/" + relPath
}

func splitDataURI(dataURI string) (mime, payload string, err error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return "", "", models.NewValidationError("Image must be a base64 data URI")
	}
	rest := dataURI[len("data:"):]

	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", "", models.NewValidationError("Image must be a base64 data URI")
	}

	meta := rest[:comma]
	payload = rest[comma+1:]

	if !strings.HasSuffix(meta, ";base64") {
		return "", "", models.NewValidationError("Image data URI must be base64-encoded")
	}
	mime = strings.ToLower(strings.TrimSuffix(meta, ";base64"))

	switch mime {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return mime, payload, nil
	default:
		return "", "", models.NewValidationError("Unsupported image type " + mime)
	}
}

func formatMatchesMime(format, mime string) bool {
	switch format {
	case "jpeg":
		return mime == "image/jpeg" || mime == "image/jpg"
	case "png":
		return mime == "image/png"
	case "gif":
		return mime == "image/gif"
	case "webp":
		return mime == "image/webp"
	default:
		return false
	}
}

// encodeImage re-encodes the decoded image. JPEG stays JPEG; everything
// else is written as PNG since GIF animation is discarded by decoding and
// the webp package has no encoder.
func encodeImage(img image.Image, format string) ([]byte, string, error) {
	buf := bytes.NewBuffer(nil)
	switch format {
	case "jpeg":
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".jpg", nil
	default:
		if err := png.Encode(buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".png", nil
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func maxB64Len(rawBytes int) int {
	return (rawBytes + 2) / 3 * 4
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
