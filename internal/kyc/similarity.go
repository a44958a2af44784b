package kyc

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

// TokenSortRatio scores how alike two names are on a 0..100 scale, ignoring
// case, punctuation and word order. Non-ASCII characters are dropped before
// comparison. If either side has no comparable characters the score is 0.
//
// The score is the indel ratio of the token-sorted strings,
// (len(a)+len(b)-d)/(len(a)+len(b)) where d is the edit distance with a
// substitution counted as one deletion plus one insertion. Halves round to
// even.
func TokenSortRatio(a, b string) int {
	pa, pb := sortedTokens(a), sortedTokens(b)
	if pa == "" || pb == "" {
		return 0
	}
	return int(math.RoundToEven(100 * indelRatio(pa, pb)))
}

func indelRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	m := metrics.NewLevenshtein()
	m.ReplaceCost = 2
	return float64(total-m.Distance(a, b)) / float64(total)
}

func sortedTokens(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r > 127:
			// dropped
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
