package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow_navigator/domain/entities"
)

func TestParseReply_SingleObject(t *testing.T) {
	actions, err := ParseReply(`{"type":"click","action":"click","selector":"#submit","description":"Submit form"}`)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	click, ok := actions[0].(entities.ClickAction)
	require.True(t, ok)
	assert.Equal(t, "#submit", click.Selector)
	assert.Nil(t, click.Index)
	assert.Equal(t, "Submit form", click.Description)
}

func TestParseReply_FencedArray(t *testing.T) {
	raw := "Here you go:\n```json\n[\n" +
		`{"type":"fill","selector":"#user","value":"alice"},` +
		`{"action":"FILL","selector":"#pin","value":1234},` +
		`{"type":"click","selector":".buy","index":"2"}` +
		"\n]\n```"

	actions, err := ParseReply(raw)
	require.NoError(t, err)
	require.Len(t, actions, 3)

	fill := actions[0].(entities.FillAction)
	assert.Equal(t, entities.ActionFill, fill.Verb)
	assert.Equal(t, "alice", fill.Value)

	pin := actions[1].(entities.FillAction)
	assert.Equal(t, "1234", pin.Value)

	click := actions[2].(entities.ClickAction)
	require.NotNil(t, click.Index)
	assert.Equal(t, 2, *click.Index)
}

func TestParseReply_ProseAroundJSON(t *testing.T) {
	actions, err := ParseReply(`Sure! {"type":"assert","subtype":"count","selector":".item","expected":"2"} Let me know.`)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	a := actions[0].(entities.AssertAction)
	assert.Equal(t, entities.AssertCount, a.Subtype)
	assert.Equal(t, "2", a.ExpectedValue())

	tests := []struct {
		name string
		raw  string
	}{
		{name: "brackets before the object", raw: "Sure! Here is the next action (step [1]):\n{\"type\":\"click\",\"selector\":\"#buy\"}"},
		{name: "braces in the prose", raw: `Next action {click the button}: {"type":"click","selector":"#buy"}`},
		{name: "trailing closer", raw: `{"type":"click","selector":"#buy"} :}`},
		{name: "array after prose", raw: `Plan [draft]: [{"type":"click","selector":"#buy"}] done.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := ParseReply(tt.raw)
			require.NoError(t, err)
			require.Len(t, actions, 1)

			click, ok := actions[0].(entities.ClickAction)
			require.True(t, ok, "got %T", actions[0])
			assert.Equal(t, "#buy", click.Selector)
		})
	}
}

func TestParseReply_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "not json", raw: "I could not find the button"},
		{name: "item without type", raw: `[{"type":"click","selector":"#a"},{"selector":"#b"}]`},
		{name: "blank type", raw: `{"type":"  ","selector":"#a"}`},
		{name: "non object item", raw: `[{"type":"click","selector":"#a"}, "click"]`},
		{name: "scalar", raw: `42`},
		{name: "empty array", raw: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestDecode_InvalidReplyBecomesInconclusiveEnd(t *testing.T) {
	actions := Decode(`[{"selector":"#b"}]`)
	require.Len(t, actions, 1)

	end, ok := actions[0].(entities.EndAction)
	require.True(t, ok)
	assert.True(t, end.Inconclusive)
	assert.Contains(t, end.Description, "Invalid oracle response")
}

func TestDecode_GenuineEnd(t *testing.T) {
	actions := Decode(`{"type":"end","action":"end","description":"done"}`)
	require.Len(t, actions, 1)

	end := actions[0].(entities.EndAction)
	assert.False(t, end.Inconclusive)
	assert.Equal(t, "done", end.Description)
}

func TestParseReply_UnknownTypeIsKept(t *testing.T) {
	actions, err := ParseReply(`{"type":"hover","selector":"#menu"}`)
	require.NoError(t, err)
	_, ok := actions[0].(entities.UnknownAction)
	assert.True(t, ok)
	assert.Equal(t, entities.ActionType("hover"), actions[0].Type())
}
