package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numeralPattern = regexp.MustCompile(`\d+(\.\d+)?`)
	wordPattern    = regexp.MustCompile(`[a-z]+`)
)

var cardinals = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12,
}

var fractions = map[string]float64{
	"half":    0.5,
	"quarter": 0.25,
}

// ResolveQuantity extracts a single non-negative magnitude from free text.
// Rules are tried in order and the first match of the first matching rule
// wins: a decimal numeral, then "<cardinal> [and a] half|quarter", then a
// lone cardinal or fraction word. The boolean is false when nothing matched;
// callers must not treat that as zero.
func ResolveQuantity(text string) (float64, bool) {
	text = normalize(text)

	if v, ok := resolveNumeral(text); ok {
		return v, true
	}

	words := wordPattern.FindAllString(text, -1)
	if v, ok := resolveCompound(words); ok {
		return v, true
	}
	return resolveWord(words)
}

func normalize(text string) string {
	return strings.ReplaceAll(strings.ToLower(text), "-", " ")
}

func resolveNumeral(text string) (float64, bool) {
	m := numeralPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func resolveCompound(words []string) (float64, bool) {
	for i, w := range words {
		base, ok := cardinals[w]
		if !ok {
			continue
		}
		j := i + 1
		if j+1 < len(words) && words[j] == "and" && words[j+1] == "a" {
			j += 2
		}
		if j < len(words) {
			if frac, ok := fractions[words[j]]; ok {
				return base + frac, true
			}
		}
	}
	return 0, false
}

func resolveWord(words []string) (float64, bool) {
	for _, w := range words {
		if v, ok := cardinals[w]; ok {
			return v, true
		}
		if v, ok := fractions[w]; ok {
			return v, true
		}
	}
	return 0, false
}
