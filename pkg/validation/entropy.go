package validation

import (
	"math"
	"strings"
)

// referenceAlphabetBits is the maximum entropy of the typical local
// part alphabet (26 letters + 10 digits). Dividing by the observed
// string length instead would score any short all-distinct string as
// 1.0 and misclassify ordinary names as random.
var referenceAlphabetBits = math.Log2(36)

// Entropy returns the normalized Shannon entropy of the character
// distribution of s, in [0,1]. Input is lowercased first, so the
// measurement is case-insensitive. Higher values mean more randomness:
// "aaaaaaa" scores near 0, a long keyboard-mash local part approaches
// 1. Never fails on any input, including non-ASCII.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	runes := []rune(strings.ToLower(s))
	if len(runes) < 2 {
		return 0
	}

	freq := make(map[rune]int, len(runes))
	for _, r := range runes {
		freq[r]++
	}

	total := float64(len(runes))
	var bits float64
	for _, count := range freq {
		p := float64(count) / total
		bits -= p * math.Log2(p)
	}

	normalized := bits / referenceAlphabetBits
	if normalized > 1 {
		return 1
	}
	if normalized < 0 {
		return 0
	}
	return normalized
}
