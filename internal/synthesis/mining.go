package synthesis

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Indicator vocabularies for mining leaf values out of raw requirement text
// when no extracted field survives cleaning.
var (
	purposeIndicators     = []string{"must", "should", "need to", "require", "provide", "allow", "enable"}
	scopeIndicators       = []string{"system", "application", "platform", "service", "tool"}
	functionIndicators    = []string{"provide", "allow", "enable", "support", "create", "manage", "track", "update"}
	stakeholderRoles      = []string{"user", "admin", "trader", "investor", "analyst", "customer", "client"}
	constraintIndicators  = []string{"must", "should", "require", "limit", "constraint", "restriction", "under", "at least"}
	dependencyIndicators  = []string{"integrate", "connect", "api", "database", "external", "platform", "service"}
	functionSentenceWords = 5
)

var roleCaser = cases.Title(language.English)

func sentencesOf(text string) []string {
	var sentences []string
	for _, part := range strings.Split(text, ".") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func containsAny(sentence string, indicators []string) bool {
	lower := strings.ToLower(sentence)
	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// minePurpose returns the first sentence carrying a purpose indicator,
// capitalized, or empty when nothing matches.
func minePurpose(texts []string) string {
	for _, sentence := range sentencesOf(strings.Join(texts, " ")) {
		if containsAny(sentence, purposeIndicators) {
			return capitalize(sentence)
		}
	}
	return ""
}

// mineScope returns the first sentence naming the system boundary.
func mineScope(texts []string) string {
	for _, sentence := range sentencesOf(strings.Join(texts, " ")) {
		if containsAny(sentence, scopeIndicators) {
			return capitalize(sentence)
		}
	}
	return ""
}

// mineFunctions pulls short action phrases starting at a function verb, up to
// five in total.
func mineFunctions(texts []string) []string {
	var functions []string
	for _, text := range texts {
		for _, sentence := range sentencesOf(text) {
			if !containsAny(sentence, functionIndicators) {
				continue
			}
			words := strings.Fields(sentence)
			for i, word := range words {
				if !isFunctionVerb(strings.ToLower(word)) || i >= len(words)-1 {
					continue
				}
				end := i + functionSentenceWords
				if end > len(words) {
					end = len(words)
				}
				functions = append(functions, strings.Join(words[i:end], " "))
				break
			}
		}
	}
	if len(functions) > 5 {
		functions = functions[:5]
	}
	return functions
}

func isFunctionVerb(word string) bool {
	for _, verb := range functionIndicators {
		if word == verb {
			return true
		}
	}
	return false
}

// mineStakeholders matches single words against the closed role vocabulary
// and returns deduplicated, capitalized, sorted role names.
func mineStakeholders(texts []string) []string {
	seen := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(strings.Join(texts, " "))) {
		word = strings.Trim(word, ".,;:!?\"'()")
		for _, role := range stakeholderRoles {
			if word == role {
				seen[roleCaser.String(role)] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// mineConstraints returns up to three sentences with constraint indicators.
func mineConstraints(texts []string) []string {
	return mineSentences(texts, constraintIndicators, 3)
}

// mineDependencies returns up to three sentences with dependency indicators.
func mineDependencies(texts []string) []string {
	return mineSentences(texts, dependencyIndicators, 3)
}

func mineSentences(texts []string, indicators []string, limit int) []string {
	var matches []string
	for _, text := range texts {
		for _, sentence := range sentencesOf(text) {
			if containsAny(sentence, indicators) {
				matches = append(matches, sentence)
				if len(matches) == limit {
					return matches
				}
			}
		}
	}
	return matches
}
