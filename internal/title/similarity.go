package title

import "strings"

// matchingStopWords are dropped before similarity comparison; they carry no
// identity and inflate the edit ratio between unrelated titles.
var matchingStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {},
	"but": {}, "in": {}, "on": {}, "at": {}, "to": {},
}

// CleanForMatching reduces a title to the form the similarity ratio is
// computed over: ASCII letters, digits and spaces only, lowercased, with
// stop words removed and whitespace collapsed.
func CleanForMatching(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r > 127:
			// non-ASCII decoration (accents, glyphs) is dropped entirely
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteByte(' ')
		}
	}
	words := strings.Fields(strings.ToLower(b.String()))
	kept := words[:0]
	for _, word := range words {
		if _, stop := matchingStopWords[word]; stop {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// numeralSequence extracts the ordered integer values of numeral tokens
// (digits or Roman I-X) from a cleaned title.
func numeralSequence(cleaned string) []int {
	var numerals []int
	for _, word := range strings.Fields(cleaned) {
		if value, ok := NumeralValue(word); ok {
			numerals = append(numerals, value)
		}
	}
	return numerals
}

// Similarity scores two titles in [0,1]. Both are cleaned independently; if
// both carry numeral tokens and the sequences differ the score is 0.0
// regardless of textual similarity, so "Fallout 3" can never fuzzy-match
// "Fallout 4". Otherwise the score is a longest-matching-blocks ratio over
// the cleaned strings (1.0 = identical).
func Similarity(a, b string) float64 {
	cleanA := CleanForMatching(a)
	cleanB := CleanForMatching(b)

	numeralsA := numeralSequence(cleanA)
	numeralsB := numeralSequence(cleanB)
	if len(numeralsA) > 0 && len(numeralsB) > 0 && !equalInts(numeralsA, numeralsB) {
		return 0.0
	}

	return matchRatio(cleanA, cleanB)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// matchRatio is 2*M/T where M is the total length of the matching blocks
// shared by a and b and T the combined length. Empty inputs compare equal.
func matchRatio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := matchingChars(a, b)
	return 2.0 * float64(matched) / float64(total)
}

// matchingChars sums the matching block lengths by repeatedly taking the
// longest common substring and recursing on the unmatched flanks.
func matchingChars(a, b string) int {
	aStart, bStart, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingChars(a[:aStart], b[:bStart])
	matched += matchingChars(a[aStart+size:], b[bStart+size:])
	return matched
}

// longestCommonBlock finds the longest common substring of a and b,
// preferring the earliest start in a on ties so the decomposition is
// deterministic.
func longestCommonBlock(a, b string) (aStart, bStart, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return aStart, bStart, size
}
