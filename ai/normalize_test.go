package ai

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"surrounding whitespace", "  \n```json {\"a\":1}```  \n", `{"a":1}`},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.raw))
		})
	}
}

func TestDecodeObject(t *testing.T) {
	var out struct {
		Question string `json:"question"`
	}
	require.NoError(t, DecodeObject("```json\n{\"question\":\"Why Go?\"}\n```", &out))
	assert.Equal(t, "Why Go?", out.Question)

	err := DecodeObject("Sure! Here is your question.", &out)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	err = DecodeObject("   ", &out)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStringListDecoding(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"strings", `["a","b"]`, []string{"a", "b"}},
		{"known field", `[{"company":"Acme"},{"company":"Globex"}]`, []string{"Acme", "Globex"}},
		{"priority order", `[{"description":"long text","name":"short"}]`, []string{"short"}},
		{"first primitive fallback", `[{"title":"Engineer","level":3}]`, []string{"Engineer"}},
		{"first primitive skips nested", `[{"tags":["x"],"label":"Backend"}]`, []string{"Backend"}},
		{"numbers", `[1, 2.5]`, []string{"1", "2.5"}},
		{"nulls and arrays skipped", `["a", null, ["b"], "c"]`, []string{"a", "c"}},
		{"object without primitives", `[{"a":{"b":1}}]`, []string{}},
		{"not a list", `"just text"`, []string{}},
		{"object instead of list", `{"name":"x"}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			require.NoError(t, json.Unmarshal([]byte(tt.data), &l))
			assert.Equal(t, tt.want, []string(l))
		})
	}
}

func TestStringListFieldFailureKeepsRecord(t *testing.T) {
	var reply struct {
		Score      Score      `json:"score"`
		Strengths  StringList `json:"strengths"`
		Weaknesses StringList `json:"weaknesses"`
	}
	data := `{"score": 8, "strengths": "not a list", "weaknesses": [{"weakness":"pace"}]}`
	require.NoError(t, json.Unmarshal([]byte(data), &reply))

	assert.Equal(t, Score(8), reply.Score)
	assert.Empty(t, reply.Strengths)
	assert.NotNil(t, reply.Strengths)
	assert.Equal(t, StringList{"pace"}, reply.Weaknesses)
}

func TestParseStringList(t *testing.T) {
	assert.Equal(t, []string{"Google", "Meta"}, ParseStringList("```json\n[\"Google\", {\"company\": \"Meta\"}]\n```"))
	assert.Equal(t, []string{}, ParseStringList("I can't help with that"))
	assert.Equal(t, []string{}, ParseStringList(""))
}

func TestScoreDecoding(t *testing.T) {
	tests := []struct {
		data    string
		want    Score
		wantErr bool
	}{
		{`7`, 7, false},
		{`7.5`, 7.5, false},
		{`"8"`, 8, false},
		{`"8/10"`, 8, false},
		{`"85%"`, 85, false},
		{`null`, 0, false},
		{`"high"`, 0, true},
		{`"NaN"`, 0, true},
		{`"nan/10"`, 0, true},
		{`"Inf"`, 0, true},
		{`"-Infinity"`, 0, true},
		{`1e400`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			var s Score
			err := json.Unmarshal([]byte(tt.data), &s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tt.want), float64(s), 1e-9)
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(12, 0, 10))
	assert.Equal(t, 4.5, Clamp(4.5, 0, 10))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 10))
}
