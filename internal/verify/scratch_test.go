package verify

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestStageNonASCIIPath(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Lê Văn Tòng.jpg")
	if err := os.WriteFile(src, []byte("photo-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	scratch, err := NewScratch(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := scratch.Stage(src)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if string(data) != "photo-bytes" {
		t.Errorf("unexpected staged content: %q", data)
	}

	entries, err := os.ReadDir(scratch.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 staged file, got %d", len(entries))
	}
	for _, r := range entries[0].Name() {
		if r > 127 {
			t.Errorf("staged name contains non-ASCII rune: %q", entries[0].Name())
		}
	}
}

func TestStageMemoized(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	scratch, err := NewScratch(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := scratch.Stage(src); err != nil {
		t.Fatal(err)
	}

	// Source mutation after staging must not be re-copied.
	if err := os.WriteFile(src, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := scratch.Stage(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1" {
		t.Errorf("expected memoized copy, got %q", data)
	}

	entries, _ := os.ReadDir(scratch.Dir())
	if len(entries) != 1 {
		t.Errorf("expected a single staged copy, got %d", len(entries))
	}
}

func TestStageMissingSource(t *testing.T) {
	scratch, err := NewScratch(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := scratch.Stage(filepath.Join(t.TempDir(), "absent.jpg")); err == nil {
		t.Error("expected error for missing source photo")
	}
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestResizeImage(t *testing.T) {
	data := encodeJPEG(t, 400, 200)

	resized, err := ResizeImage(data, 100)
	if err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("decoding resized image: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("expected 100x50, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestResizeImageWithinBounds(t *testing.T) {
	data := encodeJPEG(t, 80, 60)

	resized, err := ResizeImage(data, 100)
	if err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}
	if !bytes.Equal(resized, data) {
		t.Error("expected image within bounds to pass through unchanged")
	}
}

func TestResizeImageInvalidData(t *testing.T) {
	if _, err := ResizeImage([]byte("not an image"), 100); err == nil {
		t.Error("expected decode error")
	}
}

func TestCleanup(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	scratch, err := NewScratch(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := scratch.Stage(src); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	if err := scratch.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(scratch.Dir()); !os.IsNotExist(err) {
		t.Error("expected scratch dir removed")
	}
}
