package identity

import "strings"

// Resolve maps a free-text person name to the portrait paths of the best
// matching bucket. Strategies are tried in order, first success wins:
//
//  1. exact raw-string key match
//  2. exact match after normalization
//  3. best fuzzy match by Similarity, accepted at or above the threshold;
//     ties keep the first-seen maximum (traversal order, not reproducible)
//  4. normalized substring containment in either direction, first match
//
// A nil or empty result means no bucket resolved; that is an expected
// outcome, not an error. The layered fallback trades determinism for recall:
// names with typos, partial titles or odd spacing still resolve, at the cost
// of an occasional false-positive bucket on very short names.
func Resolve(query string, buckets BucketMap, fuzzyThreshold float64) []string {
	if len(buckets) == 0 {
		return nil
	}

	if photos, ok := buckets[query]; ok {
		return photos
	}

	queryNorm := Normalize(query)
	if queryNorm == "" {
		return nil
	}

	for name, photos := range buckets {
		if Normalize(name) == queryNorm {
			return photos
		}
	}

	var best []string
	bestScore := 0.0
	for name, photos := range buckets {
		score := Similarity(query, name)
		if score > bestScore && score >= fuzzyThreshold {
			bestScore = score
			best = photos
		}
	}
	if best != nil {
		return best
	}

	for name, photos := range buckets {
		nameNorm := Normalize(name)
		if nameNorm == "" {
			continue
		}
		if strings.Contains(nameNorm, queryNorm) || strings.Contains(queryNorm, nameNorm) {
			return photos
		}
	}

	return nil
}
