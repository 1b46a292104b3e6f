package search

import (
	"math"

	"github.com/adrg/strutil/metrics"
)

// A substitution costs as much as a delete plus an insert, so Distance
// yields the indel distance.
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// Ratio scores the similarity of a and b from 0 to 100 as
// round(100 * (len(a)+len(b)-indel) / (len(a)+len(b))).
func Ratio(a, b string) int {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	d := indel.Distance(a, b)
	return int(math.Round(100 * float64(total-d) / float64(total)))
}

// PartialRatio is the best Ratio of the shorter string against every window
// of the same length in the longer one.
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0
	s := string(short)
	for i := 0; i+len(short) <= len(long); i++ {
		score := Ratio(s, string(long[i:i+len(short)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}
