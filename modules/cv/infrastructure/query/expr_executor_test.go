package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaworks/vitaworks/modules/cv/compiler"
)

func TestExprExecutor_Filter(t *testing.T) {
	e := NewExprExecutor()
	rows := []compiler.Row{
		{"title": "A", "peer_reviewed": "yes"},
		{"title": "B", "peer_reviewed": "no"},
		{"title": "C", "peer_reviewed": "yes"},
	}

	res, err := e.Execute(`filter(rows, #.peer_reviewed == "yes")`, rows)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "A", res.Rows[0]["title"])
	assert.Equal(t, "C", res.Rows[1]["title"])
}

func TestExprExecutor_Map(t *testing.T) {
	e := NewExprExecutor()
	rows := []compiler.Row{{"title": "a paper"}}

	res, err := e.Execute(`map(rows, {"title": upper(#.title)})`, rows)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "A PAPER", res.Rows[0]["title"])
}

func TestExprExecutor_CompileError(t *testing.T) {
	e := NewExprExecutor()
	_, err := e.Execute(`filter(rows,`, nil)
	assert.Error(t, err)
}

func TestExprExecutor_NonListResult(t *testing.T) {
	e := NewExprExecutor()
	_, err := e.Execute(`len(rows)`, []compiler.Row{{"a": "1"}})
	assert.Error(t, err)
}

func TestExprExecutor_CachesPrograms(t *testing.T) {
	e := NewExprExecutor()
	for i := 0; i < 3; i++ {
		res, err := e.Execute(`rows`, []compiler.Row{{"a": "1"}})
		require.NoError(t, err)
		assert.True(t, res.Success)
	}
	assert.Len(t, e.cache, 1)
}
