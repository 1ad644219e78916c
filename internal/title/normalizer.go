package title

import (
	"regexp"
	"strings"
)

// SpecialCases maps a lowercased alias to its canonical title. Aliases are
// consulted before any algorithmic normalization so hand-curated fixes
// ("gta v" -> "Grand Theft Auto V") always win.
type SpecialCases map[string]string

// arabicNumeralExceptions lists title fragments whose sequels conventionally
// keep Arabic numerals ("Titanfall 2", never "Titanfall II").
var arabicNumeralExceptions = []string{
	"titanfall",
	"mass effect",
	"battlefield",
	"call of duty",
}

var parentheticalYear = regexp.MustCompile(`\s*\((\d{4})\)`)

// Normalizer applies the deterministic title cleanup used for matching and
// deduplication. It is immutable once constructed and safe for concurrent use.
type Normalizer struct {
	specialCases SpecialCases
}

// NewNormalizer creates a Normalizer with the supplied alias table. Keys are
// lowercased on the way in so lookups stay case-insensitive regardless of how
// the table was authored.
func NewNormalizer(specialCases SpecialCases) *Normalizer {
	cases := make(SpecialCases, len(specialCases))
	for alias, canonical := range specialCases {
		cases[strings.ToLower(alias)] = canonical
	}
	return &Normalizer{specialCases: cases}
}

// Normalize cleans a raw scraped title into its canonical matching form.
// It strips trademark glyphs and parenthesized years, trims stray separator
// characters, resolves special-case aliases, and standardizes sequel
// numerals to Roman form (Arabic 1-10 -> I-X) except for franchises that
// keep Arabic numerals. Normalize never fails and is idempotent on titles
// that are not special-case aliases.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := strings.ReplaceAll(raw, "®", "")
	cleaned = strings.ReplaceAll(cleaned, "™", "")
	cleaned = parentheticalYear.ReplaceAllString(cleaned, "")

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, ":")
	cleaned = strings.Trim(cleaned, "-")

	lowered := strings.ToLower(cleaned)
	if canonical, ok := n.specialCases[lowered]; ok {
		return canonical
	}

	words := strings.Fields(cleaned)
	for i, word := range words {
		if roman, ok := arabicToRoman[word]; ok {
			if !keepsArabicNumerals(lowered) {
				words[i] = roman
			}
			continue
		}
		words[i] = strings.TrimSpace(strings.Trim(word, ":"))
	}
	return strings.Join(words, " ")
}

// Key returns the lowercased normalized form used as the dedup/index key.
func (n *Normalizer) Key(raw string) string {
	return strings.ToLower(n.Normalize(raw))
}

func keepsArabicNumerals(loweredTitle string) bool {
	for _, exception := range arabicNumeralExceptions {
		if strings.Contains(loweredTitle, exception) {
			return true
		}
	}
	return false
}
