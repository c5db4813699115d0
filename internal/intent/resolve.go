package intent

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// editDistanceFloor is the minimum normalized similarity for the final
// resolution tier. Tuned for one-or-two character transcription slips.
const editDistanceFloor = 0.75

// Resolve maps a spoken habit name to one of the candidate names. Tiers are
// tried in order, first success wins: exact, case-insensitive, substring
// containment either direction, whitespace-token overlap, edit distance.
// The returned name is always a member of candidates.
//
// Creation duplicate checks must not use Resolve; they compare exact
// case-insensitive names only.
func Resolve(query string, candidates []string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" || len(candidates) == 0 {
		return "", false
	}

	for _, c := range candidates {
		if c == q {
			return c, true
		}
	}

	for _, c := range candidates {
		if strings.EqualFold(c, q) {
			return c, true
		}
	}

	ql := strings.ToLower(q)
	for _, c := range candidates {
		cl := strings.ToLower(c)
		if strings.Contains(cl, ql) || strings.Contains(ql, cl) {
			return c, true
		}
	}

	if c, ok := bestWordOverlap(ql, candidates); ok {
		return c, true
	}

	return bestEditDistance(ql, candidates)
}

// bestWordOverlap scores candidates by shared whitespace tokens and returns
// the max-scoring one. Ties keep the first-seen candidate.
func bestWordOverlap(queryLower string, candidates []string) (string, bool) {
	queryWords := map[string]struct{}{}
	for _, w := range strings.Fields(queryLower) {
		queryWords[w] = struct{}{}
	}

	best, bestScore := "", 0
	for _, c := range candidates {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(c)) {
			if _, ok := queryWords[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore > 0
}

func bestEditDistance(queryLower string, candidates []string) (string, bool) {
	best, bestSim := "", 0.0
	for _, c := range candidates {
		cl := strings.ToLower(c)
		n := len(queryLower)
		if len(cl) > n {
			n = len(cl)
		}
		if n == 0 {
			continue
		}
		sim := 1 - float64(levenshtein.ComputeDistance(queryLower, cl))/float64(n)
		if sim > bestSim {
			best, bestSim = c, sim
		}
	}
	if bestSim >= editDistanceFloor {
		return best, true
	}
	return "", false
}
