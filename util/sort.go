package util

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// naturalKey is a string prepared for natural sorting. Values with a numeric prefix (like "12 ft") are ordered by
// that number, all others lexicographically.
type naturalKey struct {
	value     string
	number    float64
	hasNumber bool
	// isNumber is true when the whole value is a number
	isNumber bool
}

func newNaturalKey(s string) naturalKey {
	key := naturalKey{value: s}

	prefix := numberPrefix(s)
	if prefix != "" {
		key.hasNumber = true
		key.isNumber = len(prefix) == len(s)
		key.number, _ = strconv.ParseFloat(prefix, 64)
	}

	return key
}

func (k naturalKey) less(other naturalKey) bool {
	if k.hasNumber && other.hasNumber {
		if k.number == other.number {
			// Plain numbers come before numbers with unit or other text
			return k.isNumber && !other.isNumber
		}
		return k.number < other.number
	}
	return k.value < other.value
}

// SortNatural returns a sorted copy of the trimmed values. Numbers and values starting with numbers are ordered by
// their numerical value, so "9" comes before "10".
func SortNatural(values []string) []string {
	keys := make([]naturalKey, len(values))
	for i, s := range values {
		keys[i] = newNaturalKey(strings.TrimSpace(s))
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})

	sorted := make([]string, len(keys))
	for i, key := range keys {
		sorted[i] = key.value
	}
	return sorted
}

// NaturalLess returns true when s1 comes before s2 in a naturally sorted list.
func NaturalLess(s1 string, s2 string) bool {
	return newNaturalKey(s1).less(newNaturalKey(s2))
}

// numberPrefix returns the leading number of s (e.g. "-1.5" for "-1.5 m") or an empty string.
func numberPrefix(s string) string {
	end := 0
	seenDigit := false
	seenPoint := false

	for i, r := range s {
		if r == '-' && i == 0 {
			end = i + 1
			continue
		}
		if r == '.' && !seenPoint {
			seenPoint = true
			end = i + 1
			continue
		}
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			break
		}
		seenDigit = true
		end = i + 1
	}

	if !seenDigit {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}
