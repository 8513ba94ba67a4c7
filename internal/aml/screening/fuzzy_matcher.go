package screening

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

// Matcher provides fuzzy name matching for sanctions and PEP screening.
type Matcher struct {
	logger *zap.SugaredLogger
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// Affixes stripped during normalization; honorifics and generational suffixes
// routinely differ between list entries and transaction parties.
var commonAffixes = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sir": true, "jr": true, "sr": true, "ii": true, "iii": true,
}

// NewMatcher creates a fuzzy matcher.
func NewMatcher(logger *zap.SugaredLogger) *Matcher {
	return &Matcher{logger: logger}
}

// Score returns a similarity score in [0,1] between a candidate name and a
// list entry, combining Levenshtein, Jaro-Winkler and token overlap.
func (m *Matcher) Score(query, target string) float64 {
	q := m.normalize(query)
	t := m.normalize(target)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 1.0
	}

	scores := []float64{
		m.levenshteinSimilarity(q, t),
		m.jaroWinkler(q, t),
		m.tokenSimilarity(q, t),
	}
	return m.weightedAverage(scores)
}

// BestScore returns the highest score of a candidate against a list of names.
func (m *Matcher) BestScore(query string, names []string) (float64, string) {
	best := 0.0
	matched := ""
	for _, name := range names {
		if s := m.Score(query, name); s > best {
			best = s
			matched = name
		}
	}
	return best, matched
}

// ExactMatch reports a case-insensitive exact or containment match after
// normalization. List identifiers often appear embedded in party strings.
func (m *Matcher) ExactMatch(query, target string) bool {
	q := m.normalize(query)
	t := m.normalize(target)
	if q == "" || t == "" {
		return false
	}
	return q == t || strings.Contains(q, t) || strings.Contains(t, q)
}

func (m *Matcher) normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", " ")
	name = nonAlnum.ReplaceAllString(name, "")

	tokens := strings.Fields(name)
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !commonAffixes[tok] {
			filtered = append(filtered, tok)
		}
	}
	return strings.Join(filtered, " ")
}

func (m *Matcher) levenshteinSimilarity(s1, s2 string) float64 {
	distance := levenshtein.ComputeDistance(s1, s2)
	maxLen := math.Max(float64(len(s1)), float64(len(s2)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - (float64(distance) / maxLen)
}

func (m *Matcher) jaroWinkler(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	matchWindow := int(math.Max(float64(len1), float64(len2))/2) - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	s1Matches := make([]bool, len1)
	s2Matches := make([]bool, len2)

	matches := 0
	transpositions := 0

	for i := 0; i < len1; i++ {
		start := int(math.Max(0, float64(i-matchWindow)))
		end := int(math.Min(float64(len2), float64(i+matchWindow+1)))

		for j := start; j < end; j++ {
			if s2Matches[j] || s1[i] != s2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	k := 0
	for i := 0; i < len1; i++ {
		if !s1Matches[i] {
			continue
		}
		for !s2Matches[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	jaro := (float64(matches)/float64(len1) + float64(matches)/float64(len2) +
		(float64(matches)-float64(transpositions)/2)/float64(matches)) / 3.0

	prefix := 0
	for i := 0; i < int(math.Min(float64(len1), float64(len2))) && i < 4; i++ {
		if s1[i] == s2[i] {
			prefix++
		} else {
			break
		}
	}

	return jaro + (0.1 * float64(prefix) * (1.0 - jaro))
}

func (m *Matcher) tokenSimilarity(s1, s2 string) float64 {
	set1 := make(map[string]bool)
	set2 := make(map[string]bool)
	for _, tok := range strings.Fields(s1) {
		set1[tok] = true
	}
	for _, tok := range strings.Fields(s2) {
		set2[tok] = true
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range set1 {
		if set2[tok] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	return float64(intersection) / float64(union)
}

// weightedAverage weights higher scores more so one strong signal is not
// drowned out by weaker algorithms.
func (m *Matcher) weightedAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i] > scores[j]
	})

	weightSum := 0.0
	weightedSum := 0.0
	for i, score := range scores {
		weight := 1.0 / (float64(i) + 1.0)
		weightedSum += score * weight
		weightSum += weight
	}

	return weightedSum / weightSum
}
