// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media stores uploaded teacher photos and course covers and
// derives the sized variants the templates embed.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MaxUploadSize caps one upload at 8 MiB.
const MaxUploadSize = 8 << 20

// VariantConfig describes one derived size.
type VariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool
}

// Variants are the sizes derived for every upload. Thumb is cropped
// square for teacher avatars; card and hero keep the aspect ratio.
var Variants = map[string]VariantConfig{
	"thumb": {Width: 320, Height: 320, Quality: 85, Crop: true},
	"card":  {Width: 640, Height: 400, Quality: 85},
	"hero":  {Width: 1280, Height: 720, Quality: 90},
}

// Upload is a stored image plus its derived variants.
type Upload struct {
	ID       string
	Filename string
	Width    int
	Height   int
	MimeType string
	Size     int64
	// URL paths under /uploads/, keyed "original" plus the variant names.
	Paths map[string]string
}

// Store saves uploads under a local directory served at /uploads/.
type Store struct {
	dir string
}

// NewStore creates the upload directory if missing.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root upload directory for static file serving.
func (s *Store) Dir() string { return s.dir }

// Save validates, re-encodes, and stores one uploaded image together
// with all derived variants. Re-encoding strips any embedded metadata.
func (s *Store) Save(r io.Reader, filename string) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("media: read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("media: upload exceeds %d bytes", MaxUploadSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty upload")
	}

	mimeType := detectMimeType(data)
	format := formatForMimeType(mimeType)
	if format == "" {
		return nil, fmt.Errorf("media: unsupported type %q", mimeType)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	id := uuid.NewString()
	name := safeFilename(filename, format)
	bounds := img.Bounds()

	up := &Upload{
		ID:       id,
		Filename: name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: mimeType,
		Paths:    make(map[string]string, len(Variants)+1),
	}

	original, err := encodeImage(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("media: encode original: %w", err)
	}
	up.Size = int64(len(original))

	path, err := s.writeFile(filepath.Join("originals", id), name, original)
	if err != nil {
		return nil, err
	}
	up.Paths["original"] = path

	for variant, cfg := range Variants {
		resized := resize(img, cfg)
		if resized == nil {
			continue
		}
		encoded, err := encodeImage(resized, format, cfg.Quality)
		if err != nil {
			return nil, fmt.Errorf("media: encode %s: %w", variant, err)
		}
		path, err := s.writeFile(filepath.Join(variant, id), name, encoded)
		if err != nil {
			return nil, err
		}
		up.Paths[variant] = path
	}

	return up, nil
}

// Delete removes the original and every variant of one upload.
func (s *Store) Delete(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\.") {
		return fmt.Errorf("media: bad upload id %q", id)
	}
	dirs := []string{"originals"}
	for variant := range Variants {
		dirs = append(dirs, variant)
	}
	for _, d := range dirs {
		if err := os.RemoveAll(filepath.Join(s.dir, d, id)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("media: delete %s/%s: %w", d, id, err)
		}
	}
	return nil
}

// resize applies one variant config. It returns nil when the source is
// already smaller than the target and no crop is requested.
func resize(img image.Image, cfg VariantConfig) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= cfg.Width && bounds.Dy() <= cfg.Height && !cfg.Crop {
		return nil
	}
	if cfg.Crop {
		return imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
	}
	return imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
}

func (s *Store) writeFile(subDir, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.dir, subDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create dir: %w", err)
	}
	full := filepath.Join(dir, filename)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("media: write file: %w", err)
	}
	return "/uploads/" + filepath.ToSlash(filepath.Join(subDir, filename)), nil
}

func detectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

func formatForMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		// Re-encoded as JPEG; there is no pure-Go WebP encoder.
		return "jpeg"
	default:
		return ""
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// safeFilename keeps only the base name, lowercased, with an extension
// matching the stored format.
func safeFilename(filename, format string) string {
	base := strings.ToLower(filepath.Base(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := make([]rune, 0, len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			cleaned = append(cleaned, r)
		case r == ' ':
			cleaned = append(cleaned, '-')
		}
	}
	if len(cleaned) == 0 {
		cleaned = []rune("image")
	}
	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	return string(cleaned) + ext
}
