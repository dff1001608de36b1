package core

import (
	"regexp"
	"strings"

	"github.com/codesight/codesight/schema"
)

// debtKeywords are the whole-word markers that flag a commit as tech debt.
var debtKeywords = map[string]struct{}{
	"fixme": {},
	"todo":  {},
	"hack":  {},
	"xxx":   {},
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lowercases a commit message and splits it into word tokens,
// dropping punctuation.
func Tokenize(message string) []string {
	return wordPattern.FindAllString(strings.ToLower(message), -1)
}

// HasDebtKeyword reports whether any token of message is a debt keyword.
func HasDebtKeyword(message string) bool {
	for _, tok := range Tokenize(message) {
		if _, ok := debtKeywords[tok]; ok {
			return true
		}
	}
	return false
}

// TechDebtIndex is the percentage of sampled commits flagged as debt,
// rounded to two decimals. It is 0 when nothing was sampled.
func TechDebtIndex(debtCommits, sampled int) float64 {
	if sampled == 0 {
		return 0
	}
	return schema.Round2(float64(debtCommits) / float64(sampled) * 100)
}
