package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BucketMap is an immutable snapshot of the portrait store: person name to
// an ordered list of portrait photo paths. Rebuilt wholesale by ScanBuckets;
// never mutated in place, so an active batch can read it without locking.
type BucketMap map[string][]string

// ImageFilter reports whether a file name is an acceptable photo.
type ImageFilter func(name string) bool

// ScanBuckets walks the portrait root and builds a fresh bucket map. Two
// layouts are merged: a subdirectory per person containing their photos, and
// loose image files whose base name is the person name.
func ScanBuckets(root string, isImage ImageFilter) (BucketMap, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading portrait dir %s: %w", root, err)
	}

	buckets := make(BucketMap)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			images, err := listImages(filepath.Join(root, name), isImage)
			if err != nil {
				continue
			}
			if len(images) > 0 {
				buckets[name] = append(buckets[name], images...)
			}
			continue
		}

		if isImage(name) {
			person := strings.TrimSuffix(name, filepath.Ext(name))
			buckets[person] = append(buckets[person], filepath.Join(root, name))
		}
	}

	return buckets, nil
}

// ListImages returns the image files directly under dir, sorted by name.
// Used for evidence day folders, which hold loose photos without person
// subdirectories.
func ListImages(dir string, isImage ImageFilter) ([]string, error) {
	return listImages(dir, isImage)
}

func listImages(dir string, isImage ImageFilter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isImage(entry.Name()) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// Stats summarises a bucket map for status endpoints.
type Stats struct {
	Persons int `json:"persons"`
	Photos  int `json:"photos"`
}

// Stats returns person and photo counts for the snapshot.
func (b BucketMap) Stats() Stats {
	s := Stats{Persons: len(b)}
	for _, photos := range b {
		s.Photos += len(photos)
	}
	return s
}

// Persons returns the bucket keys in sorted order.
func (b BucketMap) Persons() []string {
	persons := make([]string, 0, len(b))
	for name := range b {
		persons = append(persons, name)
	}
	sort.Strings(persons)
	return persons
}
