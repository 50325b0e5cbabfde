package verify

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/ngocvo/rollcall/internal/constants"
)

// Scratch materializes photos into a content-addressed temp location before
// they are handed to the oracle. Evidence and portrait paths routinely carry
// non-ASCII characters that some oracle backends choke on; staging also
// downscales oversized photos once instead of per comparison. Staged copies
// are memoized by a hash of the absolute source path.
type Scratch struct {
	dir     string
	maxSize int

	mu     sync.Mutex
	staged map[string]string // absolute source path -> staged path
}

// NewScratch creates a scratch area rooted at dir (created on demand).
func NewScratch(dir string) (*Scratch, error) {
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "rollcall_scratch_")
		if err != nil {
			return nil, fmt.Errorf("creating scratch dir: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch dir %s: %w", dir, err)
	}
	return &Scratch{
		dir:     dir,
		maxSize: constants.MaxImageSize,
		staged:  make(map[string]string),
	}, nil
}

// Dir returns the scratch directory path.
func (s *Scratch) Dir() string { return s.dir }

// Cleanup removes the staging directory with all staged copies. The scratch
// is unusable afterwards.
func (s *Scratch) Cleanup() error {
	s.mu.Lock()
	s.staged = make(map[string]string)
	s.mu.Unlock()
	return os.RemoveAll(s.dir)
}

// Stage copies a photo into the scratch area under an ASCII-safe
// content-addressed name and returns the staged bytes. Repeated calls for
// the same source path reuse the first copy.
func (s *Scratch) Stage(srcPath string) ([]byte, error) {
	abs, err := filepath.Abs(srcPath)
	if err != nil {
		abs = srcPath
	}

	s.mu.Lock()
	staged, ok := s.staged[abs]
	s.mu.Unlock()

	if !ok {
		staged = filepath.Join(s.dir, stagedName(abs))
		if _, statErr := os.Stat(staged); statErr != nil {
			if err := s.copyStaged(abs, staged); err != nil {
				return nil, err
			}
		}
		s.mu.Lock()
		s.staged[abs] = staged
		s.mu.Unlock()
	}

	data, err := os.ReadFile(staged)
	if err != nil {
		return nil, fmt.Errorf("reading staged photo: %w", err)
	}
	return data, nil
}

func (s *Scratch) copyStaged(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading photo %s: %w", src, err)
	}

	// Downscale oversized photos; keep originals as-is if the resize fails
	// (unknown format, corrupt data) so the oracle can report its own error.
	if resized, err := ResizeImage(data, s.maxSize); err == nil {
		data = resized
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing staged photo: %w", err)
	}
	return nil
}

// stagedName builds an ASCII file name from the FNV hash of the absolute
// source path, preserving the extension when it is ASCII.
func stagedName(absPath string) string {
	h := fnv.New32a()
	h.Write([]byte(absPath))

	ext := strings.ToLower(filepath.Ext(absPath))
	for _, r := range ext {
		if r > 127 {
			ext = ".jpg"
			break
		}
	}
	return fmt.Sprintf("img_%08x%s", h.Sum32(), ext)
}

// ResizeImage resizes an image to fit within maxSize while keeping aspect
// ratio. Images already within bounds are re-encoded unchanged in size.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return data, nil
	}

	if width > height {
		height = height * maxSize / width
		width = maxSize
	} else {
		width = width * maxSize / height
		height = maxSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
