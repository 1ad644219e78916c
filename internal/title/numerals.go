package title

import "strings"

var arabicToRoman = map[string]string{
	"1":  "I",
	"2":  "II",
	"3":  "III",
	"4":  "IV",
	"5":  "V",
	"6":  "VI",
	"7":  "VII",
	"8":  "VIII",
	"9":  "IX",
	"10": "X",
}

var romanValues = map[string]int{
	"I":    1,
	"II":   2,
	"III":  3,
	"IV":   4,
	"V":    5,
	"VI":   6,
	"VII":  7,
	"VIII": 8,
	"IX":   9,
	"X":    10,
}

// IsRomanNumeral reports whether token is a Roman numeral between I and X,
// case-insensitively. Larger numerals do not occur in sequel numbering.
func IsRomanNumeral(token string) bool {
	_, ok := romanValues[strings.ToUpper(token)]
	return ok
}

// NumeralValue converts an all-digit token or a Roman numeral I-X to its
// integer value. The second return is false when the token is neither.
func NumeralValue(token string) (int, bool) {
	if token != "" && isASCIIDigits(token) {
		value := 0
		for _, r := range token {
			value = value*10 + int(r-'0')
		}
		return value, true
	}
	if value, ok := romanValues[strings.ToUpper(token)]; ok {
		return value, true
	}
	return 0, false
}

func isASCIIDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
