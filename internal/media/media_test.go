// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testJPEG renders a gradient JPEG of the given size.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveCreatesVariants(t *testing.T) {
	s := testStore(t)

	up, err := s.Save(bytes.NewReader(testJPEG(t, 1600, 900)), "Teacher Photo.JPG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if up.Width != 1600 || up.Height != 900 {
		t.Errorf("dimensions = %dx%d", up.Width, up.Height)
	}
	if up.MimeType != "image/jpeg" {
		t.Errorf("mime = %q", up.MimeType)
	}
	if up.Filename != "teacher-photo.jpg" {
		t.Errorf("filename = %q", up.Filename)
	}

	for _, key := range []string{"original", "thumb", "card", "hero"} {
		p, ok := up.Paths[key]
		if !ok {
			t.Errorf("missing %s variant", key)
			continue
		}
		if !strings.HasPrefix(p, "/uploads/") {
			t.Errorf("%s path = %q", key, p)
		}
		onDisk := filepath.Join(s.Dir(), strings.TrimPrefix(p, "/uploads/"))
		if _, err := os.Stat(onDisk); err != nil {
			t.Errorf("%s not on disk: %v", key, err)
		}
	}
}

func TestSaveSmallImageSkipsUpscaling(t *testing.T) {
	s := testStore(t)

	up, err := s.Save(bytes.NewReader(testJPEG(t, 200, 150)), "tiny.jpg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Too small for card and hero, but thumb crops regardless.
	if _, ok := up.Paths["card"]; ok {
		t.Error("card variant created for undersized image")
	}
	if _, ok := up.Paths["hero"]; ok {
		t.Error("hero variant created for undersized image")
	}
	if _, ok := up.Paths["thumb"]; !ok {
		t.Error("thumb variant missing")
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := testStore(t)
	if _, err := s.Save(strings.NewReader("<html>not an image</html>"), "page.html"); err == nil {
		t.Fatal("expected error for non-image upload")
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	s := testStore(t)
	big := make([]byte, MaxUploadSize+1)
	if _, err := s.Save(bytes.NewReader(big), "big.jpg"); err == nil {
		t.Fatal("expected error for oversized upload")
	}
}

func TestDeleteRemovesAllVariants(t *testing.T) {
	s := testStore(t)
	up, err := s.Save(bytes.NewReader(testJPEG(t, 1600, 900)), "cover.jpg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Delete(up.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for key, p := range up.Paths {
		onDisk := filepath.Join(s.Dir(), strings.TrimPrefix(p, "/uploads/"))
		if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
			t.Errorf("%s still on disk after delete", key)
		}
	}
}

func TestDeleteRejectsPathTraversal(t *testing.T) {
	s := testStore(t)
	if err := s.Delete("../etc"); err == nil {
		t.Fatal("expected error for traversal id")
	}
}
