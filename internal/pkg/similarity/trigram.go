// Package similarity scores name similarity in application code, using the
// same trigram model as PostgreSQL's pg_trgm extension.
package similarity

import (
	"strings"
	"unicode"
)

// Trigrams returns the set of trigrams of s. Words are runs of letters or
// digits, lowercased and padded with two leading blanks and one trailing
// blank before splitting.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Score returns |A∩B| / |A∪B| over the trigram sets of a and b, in [0, 1].
func Score(a, b string) float64 {
	return scoreSets(Trigrams(a), Trigrams(b))
}

func scoreSets(ta, tb map[string]struct{}) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			common++
		}
	}
	union := len(ta) + len(tb) - common
	return float64(common) / float64(union)
}

// Scorer caches the trigram set of each string it has seen. Use it when
// the same names are compared many times.
type Scorer struct {
	cache map[string]map[string]struct{}
}

// NewScorer creates an empty Scorer
func NewScorer() *Scorer {
	return &Scorer{cache: make(map[string]map[string]struct{})}
}

// Score is like the package-level Score but memoizes trigram sets.
func (s *Scorer) Score(a, b string) float64 {
	return scoreSets(s.trigrams(a), s.trigrams(b))
}

func (s *Scorer) trigrams(v string) map[string]struct{} {
	if t, ok := s.cache[v]; ok {
		return t
	}
	t := Trigrams(v)
	s.cache[v] = t
	return t
}
