package title

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// numberRegex extracts numbers from titles ("video 2", "part 10").
var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// Confidence represents how closely a candidate matches a query.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // Score < 0.70
	ConfidenceLow                      // Score >= 0.70
	ConfidenceMedium                   // Score >= 0.85
	ConfidenceHigh                     // Score >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

func confidenceFor(score float64) Confidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Match is one ranked candidate.
type Match struct {
	Index      int     // position in the candidate slice
	Title      string  // the candidate as given
	Score      float64 // 0.0-1.0
	Confidence Confidence
}

// Score rates how well candidate matches query.
// A query whose words all appear in the candidate scores 1.0. Otherwise the
// Jaro-Winkler similarity of the cleaned strings is used, adjusted for
// matching or conflicting numbers.
func Score(query, candidate string) float64 {
	q := Clean(query)
	c := Clean(candidate)
	if q == "" {
		return 0
	}
	if containsWords(c, q) {
		return 1.0
	}

	score := float64(edlib.JaroWinklerSimilarity(q, c))
	return adjustScoreForNumbers(score, extractNumbers(q), extractNumbers(c))
}

// Rank scores every candidate against query and returns those at or above
// minConfidence, best first. Ties keep candidate order.
func Rank(query string, candidates []string, minConfidence Confidence) []Match {
	var out []Match
	for i, cand := range candidates {
		s := Score(query, cand)
		conf := confidenceFor(s)
		if conf < minConfidence || conf == ConfidenceNone {
			continue
		}
		out = append(out, Match{Index: i, Title: cand, Score: s, Confidence: conf})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// containsWords reports whether every word of q appears in c, in order.
func containsWords(c, q string) bool {
	return strings.Contains(" "+c+" ", " "+q+" ")
}

func extractNumbers(s string) []string {
	return numberRegex.FindAllString(s, -1)
}

// adjustScoreForNumbers rewards a shared number and penalizes a missing or
// different one. Queries without numbers are unaffected.
func adjustScoreForNumbers(score float64, queryNums, candidateNums []string) float64 {
	if len(queryNums) == 0 {
		return score
	}
	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range queryNums {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
