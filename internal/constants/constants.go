// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Batch processing constants
const (
	// DefaultWorkers is the default number of parallel workers for batch units
	DefaultWorkers = 4

	// DefaultUnitTimeout is the maximum time a single batch unit may run
	// before it is recorded as a timeout error
	DefaultUnitTimeout = 60 * time.Second

	// EventChannelBuffer is the buffer size for task event listener channels
	EventChannelBuffer = 100
)

// Evidence matching constants
const (
	// DefaultDistanceThreshold is the maximum oracle distance for a candidate
	// photo to count as a match. Lower values = stricter matching.
	DefaultDistanceThreshold = 0.6

	// FuzzyNameThreshold is the minimum name similarity score required for
	// the fuzzy resolution stage to accept a portrait bucket
	FuzzyNameThreshold = 0.70
)

// Image handling constants
const (
	// MaxImageSize is the maximum dimension (width or height) for photos
	// staged for the verification oracle
	MaxImageSize = 1920
)

// HTTP client constants
const (
	// DefaultHTTPTimeout bounds a single oracle or extractor call
	DefaultHTTPTimeout = 90 * time.Second
)
