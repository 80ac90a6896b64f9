package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameQuery_Match(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		given  string
		family string
		want   bool
	}{
		{name: "empty matches all", term: "  ", given: "Ana", family: "Silva", want: true},
		{name: "single word in given", term: "mar", given: "Maria", family: "Clara", want: true},
		{name: "single word in family", term: "CLA", given: "Maria", family: "Clara", want: true},
		{name: "single word miss", term: "joão", given: "Maria", family: "Clara", want: false},
		{name: "first last", term: "Maria Clara", given: "Maria", family: "Clara", want: true},
		{name: "last first", term: "Clara Maria", given: "Maria", family: "Clara", want: true},
		{name: "compound given name", term: "ana paula", given: "Ana Paula", family: "Souza", want: true},
		{name: "reversed compound family", term: "santos dos", given: "Pedro", family: "dos Santos", want: true},
		{name: "all words across fields", term: "Pedro Souza Lima", given: "Pedro Henrique", family: "Souza Lima", want: true},
		{name: "one word missing", term: "Maria Souza", given: "Maria", family: "Clara", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNameQuery(tt.term).Match(tt.given, tt.family))
		})
	}
}

func TestNameQuery_MatchIdempotent(t *testing.T) {
	people := [][2]string{
		{"Maria", "Clara"}, {"Ana Paula", "Souza"}, {"Pedro", "dos Santos"},
		{"Clara", "Maria"}, {"João", "Pereira"}, {"Mariana", "Lima"},
	}
	filter := func(q NameQuery, in [][2]string) [][2]string {
		out := [][2]string{}
		for _, p := range in {
			if q.Match(p[0], p[1]) {
				out = append(out, p)
			}
		}
		return out
	}

	for _, term := range []string{"", "mar", "maria clara", "santos dos", "souza ana", "x"} {
		t.Run(term, func(t *testing.T) {
			q := ParseNameQuery(term)
			once := filter(q, people)
			assert.Equal(t, once, filter(q, once))
		})
	}
}

func TestGender_SortOrder(t *testing.T) {
	// gender sorts on the stored code
	assert.Less(t, string(GenderFemale), string(GenderMale))
}

func TestNameQuery_Phrases(t *testing.T) {
	q := ParseNameQuery("  Clara   Maria ")
	assert.Equal(t, []string{"Clara", "Maria"}, q.Words)
	assert.Equal(t, "Clara Maria", q.Phrase())
	assert.Equal(t, "Maria Clara", q.ReversedPhrase())
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(50, 10)
	assert.Equal(t, int64(10), a)
	assert.Equal(t, int64(50), b)
	a, b = CanonicalPair(10, 50)
	assert.Equal(t, int64(10), a)
	assert.Equal(t, int64(50), b)
}

func TestUser_HasPermission(t *testing.T) {
	u := User{Permissions: []Permission{PermViewDashboard}}
	assert.True(t, u.HasPermission(PermViewDashboard))
	assert.False(t, u.HasPermission(PermReviewDuplicates))
	u.IsSuperuser = true
	assert.True(t, u.HasPermission(PermReviewDuplicates))
}

func TestGender(t *testing.T) {
	assert.True(t, GenderFemale.Valid())
	assert.False(t, Gender("X").Valid())
	assert.Equal(t, "Feminino", GenderFemale.Label())
	assert.Equal(t, "Masculino", GenderMale.Label())
}
