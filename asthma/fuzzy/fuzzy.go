// Package fuzzy scores drug names against the controller reference list.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Matcher picks the best reference item for a candidate name.
type Matcher interface {
	// Match returns the best scoring choice and whether its score reached
	// cutoff (0-100).
	Match(candidate string, choices []string, cutoff int) (string, bool)
}

// FullProcess lower-cases s, turns every non alphanumeric rune into a space
// and trims the result.
func FullProcess(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(mapped)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(FullProcess(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Ratio is the indel similarity 100 * 2M / T, where M is the length of the
// longest common subsequence and T the combined length, rounded half to even.
// Only identical strings score 100.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(200*commonSubsequence(ra, rb)) / float64(total)))
}

func commonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// TokenSortRatio compares a and b after sorting their processed tokens, so
// word order does not matter.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSortMatcher matches with TokenSortRatio. Ties go to the earliest
// choice.
type TokenSortMatcher struct{}

func (TokenSortMatcher) Match(candidate string, choices []string, cutoff int) (string, bool) {
	if FullProcess(candidate) == "" {
		return "", false
	}
	best, bestScore := "", -1
	for _, c := range choices {
		if s := TokenSortRatio(candidate, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < cutoff {
		return "", false
	}
	return best, true
}
