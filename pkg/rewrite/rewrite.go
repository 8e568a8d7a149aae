// Package rewrite detects rewritten histories by comparing two root-to-tip
// sequences of commit identifiers.
package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xrash/smetrics"
)

// DefaultThreshold is the similarity at or above which two histories are
// considered rewrites of each other.
const DefaultThreshold = 0.92

const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// ErrInvalidThreshold is returned when a threshold lies outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// Similarity concatenates each sequence and returns their Jaro-Winkler
// similarity.
func Similarity(a, b []string) float64 {
	return JaroWinkler(strings.Join(a, ""), strings.Join(b, ""))
}

// IsRewrite reports whether the similarity of a and b reaches threshold.
func IsRewrite(a, b []string, threshold float64) (bool, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return false, err
	}
	return Similarity(a, b) >= threshold, nil
}

// ValidateThreshold rejects thresholds outside [0, 1], NaN included.
func ValidateThreshold(threshold float64) error {
	if !(threshold >= 0 && threshold <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0, 1].
// Identical strings, both empty included, score 1; a single empty string
// scores 0. Up to 4 common prefix bytes boost scores above 0.7.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, boostThreshold, prefixSize)
}
