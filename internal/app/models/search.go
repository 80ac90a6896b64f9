package models

import "strings"

// NameQuery is a parsed free-text name search.
//
// A single word matches when it is a substring of the given or family name.
// Several words match when any of these holds: the joined words appear in
// either field, the reversed words appear in either field, or every word
// appears in one of the two fields.
type NameQuery struct {
	Words []string
}

// ParseNameQuery splits term on whitespace. An empty term yields an empty query.
func ParseNameQuery(term string) NameQuery {
	return NameQuery{Words: strings.Fields(term)}
}

// Empty reports whether the query matches everything
func (q NameQuery) Empty() bool {
	return len(q.Words) == 0
}

// Phrase is the words joined in input order
func (q NameQuery) Phrase() string {
	return strings.Join(q.Words, " ")
}

// ReversedPhrase is the words joined in reverse order
func (q NameQuery) ReversedPhrase() string {
	rev := make([]string, len(q.Words))
	for i, w := range q.Words {
		rev[len(q.Words)-1-i] = w
	}
	return strings.Join(rev, " ")
}

// Match applies the query to a name pair, case-insensitively.
func (q NameQuery) Match(given, family string) bool {
	if q.Empty() {
		return true
	}
	given, family = strings.ToLower(given), strings.ToLower(family)
	inEither := func(s string) bool {
		s = strings.ToLower(s)
		return strings.Contains(given, s) || strings.Contains(family, s)
	}

	if len(q.Words) == 1 {
		return inEither(q.Words[0])
	}
	if inEither(q.Phrase()) || inEither(q.ReversedPhrase()) {
		return true
	}
	for _, w := range q.Words {
		if !inEither(w) {
			return false
		}
	}
	return true
}
