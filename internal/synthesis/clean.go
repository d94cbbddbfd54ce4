package synthesis

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	listMarkerRE    = regexp.MustCompile(`\d+[.)]`)
	whitespaceRunRE = regexp.MustCompile(`\s+`)
	periodRunRE     = regexp.MustCompile(`\.{2,}`)
)

// Clean strips model artifacts from extracted text: numbered-list remnants
// (e.g. "2. scope or boundaries of this system 3. unknown"), collapsed
// whitespace and repeated periods. Fragments under 10 characters or purely
// numeric are rejected outright. Clean is idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = stripNumberedFragments(text)
	text = whitespaceRunRE.ReplaceAllString(text, " ")
	text = periodRunRE.ReplaceAllString(text, ".")
	text = strings.TrimSpace(text)

	if len(text) < 10 || isAllDigits(text) {
		return ""
	}
	return text
}

// stripNumberedFragments removes each list marker and its trailing run, but
// only when the run reaches the next marker or the end of the text without
// crossing a sentence boundary. Mid-sentence numbers ("within 2.5 seconds")
// survive because a period intervenes.
func stripNumberedFragments(text string) string {
	markers := listMarkerRE.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return text
	}

	var builder strings.Builder
	keepFrom := 0
	for i, marker := range markers {
		if marker[0] < keepFrom {
			continue
		}
		limit := len(text)
		if i+1 < len(markers) {
			limit = markers[i+1][0]
		}
		if strings.Contains(text[marker[1]:limit], ".") {
			continue
		}
		builder.WriteString(text[keepFrom:marker[0]])
		keepFrom = limit
	}
	builder.WriteString(text[keepFrom:])
	return builder.String()
}

func isAllDigits(text string) bool {
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(text) > 0
}

// capitalize upper-cases the first letter and lower-cases the rest, the way
// mined sentences are normalized.
func capitalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(strings.ToLower(text))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
