// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// thumbnailQuality is the JPEG quality for generated variants.
const thumbnailQuality = 85

// Thumbnailer creates resized cover variants for index entries using
// pure Go image libraries.
type Thumbnailer struct {
	width  int
	logger *slog.Logger
}

// NewThumbnailer creates a Thumbnailer producing variants of the given
// maximum width.
func NewThumbnailer(width int, logger *slog.Logger) *Thumbnailer {
	return &Thumbnailer{
		width:  width,
		logger: logger,
	}
}

// Create writes a JPEG thumbnail next to the source file and returns the
// variant's filename. Sources narrower than the target width are skipped,
// returning "" with no error.
func (t *Thumbnailer) Create(sourcePath string) (string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("reading source image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding source image: %w", err)
	}

	// Pure Go encoders drop EXIF, so bake the orientation in first.
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	if img.Bounds().Dx() <= t.width {
		return "", nil
	}

	resized := imaging.Resize(img, t.width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}

	name := thumbnailName(filepath.Base(sourcePath))
	target := filepath.Join(filepath.Dir(sourcePath), name)
	if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing thumbnail: %w", err)
	}

	t.logger.Debug("thumbnail created", "file", name, "width", t.width)
	return name, nil
}

// thumbnailName maps cover.png to cover-thumb.jpg.
func thumbnailName(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-thumb.jpg"
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
