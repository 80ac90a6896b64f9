package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingValues struct {
	cleared []string
	updated map[string][][]interface{}
	failOn  string
}

func (r *recordingValues) Clear(_ context.Context, _, a1 string) error {
	if r.failOn == "clear" {
		return errors.New("quota")
	}
	r.cleared = append(r.cleared, a1)
	return nil
}

func (r *recordingValues) Update(_ context.Context, _, a1 string, values [][]interface{}) error {
	if r.failOn == "update" {
		return errors.New("quota")
	}
	r.updated[a1] = values
	return nil
}

func TestReplaceTable(t *testing.T) {
	rec := &recordingValues{updated: map[string][][]interface{}{}}
	c := &Client{values: rec, spreadsheetID: "sheet-1"}

	err := c.ReplaceTable(context.Background(), "Participantes!A1",
		[]string{"Nome", "Sobrenome"},
		[][]string{{"Ana", "Souza"}, {"Bruno", "Lima"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Participantes"}, rec.cleared)
	assert.Equal(t, [][]interface{}{
		{"Nome", "Sobrenome"},
		{"Ana", "Souza"},
		{"Bruno", "Lima"},
	}, rec.updated["Participantes!A1"])
}

func TestReplaceTableErrors(t *testing.T) {
	for _, step := range []string{"clear", "update"} {
		t.Run(step, func(t *testing.T) {
			c := &Client{values: &recordingValues{updated: map[string][][]interface{}{}, failOn: step}}
			err := c.ReplaceTable(context.Background(), "A1", []string{"x"}, nil)
			assert.Error(t, err)
		})
	}
}
