// Package compare implements normalized name-list comparison.
//
// Two raw names are considered the same entity when they normalize equally:
// comparison happens only after trimming whitespace and case-folding, and
// duplicates collapse under set semantics.
package compare

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidRange is returned when an upstream range read produced a shape
// that is not a list of rows. It is propagated, never swallowed.
var ErrInvalidRange = errors.New("range did not return a list of rows")

// Normalize applies the uniform comparison rule: trim whitespace, case-fold.
// An empty result means the raw value was blank and should be dropped.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeSet builds the set of normalized, non-blank entries of a list.
func NormalizeSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, raw := range list {
		if n := Normalize(raw); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// NormalizeList returns the normalized, de-duplicated entries of a list in
// lexicographic order.
func NormalizeList(list []string) []string {
	return sorted(NormalizeSet(list))
}

// Compare intersects two name lists after normalization. The result is
// lexicographically sorted so downstream processing order is reproducible.
func Compare(a, b []string) []string {
	setA := NormalizeSet(a)
	setB := NormalizeSet(b)

	matches := make(map[string]struct{})
	for name := range setA {
		if _, ok := setB[name]; ok {
			matches[name] = struct{}{}
		}
	}
	return sorted(matches)
}

// FirstColumn extracts the first cell of each row, dropping empty or missing
// first cells. Rows are the raw shape returned by a range read.
func FirstColumn(rows [][]string) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		names = append(names, row[0])
	}
	return names
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
