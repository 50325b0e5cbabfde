package verify

import (
	"context"
	"math"

	"github.com/ngocvo/rollcall/internal/identity"
)

// OutcomeKind tags the result of an evidence-matching sweep.
type OutcomeKind string

const (
	// OutcomeFound means a candidate photo matched within the threshold.
	OutcomeFound OutcomeKind = "found"

	// OutcomeNoMatch means the sweep ran but the best distance stayed above
	// the threshold; a near-miss is rejected, not silently accepted.
	OutcomeNoMatch OutcomeKind = "no_match"

	// OutcomeNoBucket means no portrait bucket resolved for the person.
	OutcomeNoBucket OutcomeKind = "no_bucket"

	// OutcomeNoComparisons means the sweep completed zero successful
	// pairwise calls (every pair errored or no photos were readable).
	OutcomeNoComparisons OutcomeKind = "no_comparisons"
)

// Outcome is the tagged result of Matcher.Match. BestPhoto and BestDistance
// are only meaningful for OutcomeFound and OutcomeNoMatch.
type Outcome struct {
	Kind         OutcomeKind `json:"kind"`
	BestPhoto    string      `json:"best_photo,omitempty"`
	BestDistance float64     `json:"best_distance,omitempty"`
	Comparisons  int         `json:"comparisons"`
	Errors       int         `json:"errors"`
}

// Matched reports whether the sweep produced an accepted match.
func (o Outcome) Matched() bool { return o.Kind == OutcomeFound }

// Matcher runs all-pairs portrait-versus-candidate sweeps through the
// oracle. Construct once and inject; the oracle is never lazily created.
type Matcher struct {
	oracle    Oracle
	scratch   *Scratch
	threshold float64
	fuzzy     float64
}

// NewMatcher creates a matcher with the given acceptance threshold on the
// oracle distance and fuzzy threshold for name resolution.
func NewMatcher(oracle Oracle, scratch *Scratch, threshold, fuzzy float64) *Matcher {
	return &Matcher{oracle: oracle, scratch: scratch, threshold: threshold, fuzzy: fuzzy}
}

// Match finds the candidate photo best matching the named person. Portraits
// resolve through the identity resolver; every resolved portrait is compared
// against every candidate and the globally minimal distance wins, but only
// if it is at or below the threshold. Per-pair oracle failures are counted
// and skipped; they never abort the sweep.
func (m *Matcher) Match(ctx context.Context, personName string, candidates []string, buckets identity.BucketMap) Outcome {
	portraits := identity.Resolve(personName, buckets, m.fuzzy)
	if len(portraits) == 0 {
		return Outcome{Kind: OutcomeNoBucket}
	}

	bestDistance := math.Inf(1)
	bestPhoto := ""
	comparisons := 0
	errorCount := 0

	for _, portraitPath := range portraits {
		portraitData, err := m.scratch.Stage(portraitPath)
		if err != nil {
			errorCount++
			continue
		}

		for _, candidatePath := range candidates {
			candidateData, err := m.scratch.Stage(candidatePath)
			if err != nil {
				errorCount++
				continue
			}

			result, err := m.oracle.Verify(ctx, portraitData, candidateData)
			if err != nil {
				errorCount++
				continue
			}

			comparisons++
			if result.Distance < bestDistance {
				bestDistance = result.Distance
				bestPhoto = candidatePath // original path, not the staged copy
			}
		}
	}

	if comparisons == 0 {
		return Outcome{Kind: OutcomeNoComparisons, Errors: errorCount}
	}

	outcome := Outcome{
		BestPhoto:    bestPhoto,
		BestDistance: bestDistance,
		Comparisons:  comparisons,
		Errors:       errorCount,
	}
	if bestDistance <= m.threshold {
		outcome.Kind = OutcomeFound
	} else {
		outcome.Kind = OutcomeNoMatch
	}
	return outcome
}
