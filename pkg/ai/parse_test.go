package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResultPlainJSON(t *testing.T) {
	result, err := ParseResult(`{"score": 4, "summary": "Solid answer.", "improvement": "Add metrics."}`)
	require.NoError(t, err)
	require.Equal(t, Result{Score: 4, Summary: "Solid answer.", Improvement: "Add metrics."}, result)
}

func TestParseResultSurroundingCommentary(t *testing.T) {
	raw := "Sure! Here is the evaluation you asked for:\n```json\n" +
		`{"score": 3, "summary": "Partial answer.", "improvement": "Mention trade-offs."}` +
		"\n```\nLet me know if you need anything else."
	result, err := ParseResult(raw)
	require.NoError(t, err)
	require.Equal(t, 3, result.Score)
	require.Equal(t, "Partial answer.", result.Summary)
	require.Equal(t, "Mention trade-offs.", result.Improvement)
}

func TestParseResultClampsScore(t *testing.T) {
	result, err := ParseResult(`{"score": 9, "summary": "s", "improvement": "i"}`)
	require.NoError(t, err)
	require.Equal(t, 5, result.Score)

	result, err = ParseResult(`{"score": -2, "summary": "s", "improvement": "i"}`)
	require.NoError(t, err)
	require.Equal(t, 1, result.Score)
}

func TestParseResultScoreDefaults(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{name: "missing", raw: `{"summary": "s"}`, want: 1},
		{name: "non-numeric", raw: `{"score": "great", "summary": "s"}`, want: 1},
		{name: "numeric string", raw: `{"score": "4"}`, want: 4},
		{name: "fractional", raw: `{"score": 3.7}`, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseResult(tc.raw)
			require.NoError(t, err)
			require.Equal(t, tc.want, result.Score)
		})
	}
}

func TestParseResultStringDefaultsAndTrimming(t *testing.T) {
	result, err := ParseResult(`{"score": 2, "summary": "  padded  "}`)
	require.NoError(t, err)
	require.Equal(t, "padded", result.Summary)
	require.Equal(t, "", result.Improvement)
}

func TestParseResultNoObject(t *testing.T) {
	for _, raw := range []string{"", "no json here", "}{", "{ broken"} {
		_, err := ParseResult(raw)
		require.ErrorIs(t, err, ErrParse)
	}
}
