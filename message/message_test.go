package message_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-swarm/message"
)

func TestMarshal_UserMessageHasNoType(t *testing.T) {
	b, err := json.Marshal(message.User("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(b))
}

func TestMarshal_RequiredFieldsAlwaysPresent(t *testing.T) {
	tests := []struct {
		name string
		msg  message.Message
		want string
	}{
		{
			name: "function_call with empty arguments",
			msg:  message.FunctionCall("c1", "lookup", ""),
			want: `{"type":"function_call","call_id":"c1","name":"lookup","arguments":""}`,
		},
		{
			name: "function_call_output with empty output",
			msg:  message.FunctionCallOutput("c1", ""),
			want: `{"type":"function_call_output","call_id":"c1","output":""}`,
		},
		{
			name: "reasoning without summary",
			msg:  message.Reasoning("rs_1"),
			want: `{"type":"reasoning","id":"rs_1","summary":[]}`,
		},
		{
			name: "assistant output text gets annotations",
			msg:  message.AssistantText("ok"),
			want: `{"type":"message","role":"assistant","content":[{"type":"output_text","text":"ok","annotations":[]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestMarshal_SenderOmittedWhenStripped(t *testing.T) {
	m := message.AssistantText("hello")
	m.Sender = "A"

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"sender":"A"`)

	b, err = json.Marshal(m.WithoutSender())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "sender")
}

func TestUnmarshal_OutputItems(t *testing.T) {
	raw := `[
		{"type":"reasoning","id":"rs_1","summary":[{"type":"summary_text","text":"thinking"}]},
		{"type":"message","id":"msg_1","role":"assistant","status":"completed","content":[{"type":"output_text","text":"Hel","annotations":[]},{"type":"output_text","text":"lo","annotations":[]}]},
		{"type":"function_call","id":"fc_1","call_id":"call_1","name":"transfer_to_b","arguments":"{}"},
		{"type":"function_call_output","call_id":"call_1","output":"done"},
		{"role":"user","content":"plain"}
	]`
	var msgs []message.Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msgs))
	require.Len(t, msgs, 5)

	assert.True(t, msgs[0].IsReasoning())
	assert.Equal(t, "thinking", msgs[0].Summary[0].Text)

	assert.Equal(t, "Hello", msgs[1].Text())
	assert.Equal(t, message.RoleAssistant, msgs[1].Role)

	assert.True(t, msgs[2].IsFunctionCall())
	assert.Equal(t, "call_1", msgs[2].CallID)
	assert.Equal(t, "transfer_to_b", msgs[2].Name)

	assert.True(t, msgs[3].IsFunctionCallOutput())
	assert.Equal(t, "done", msgs[3].Output)

	assert.True(t, msgs[4].IsUser())
	assert.Equal(t, "plain", msgs[4].Text())
}

func TestUnmarshal_StructuredOutputKeptAsJSON(t *testing.T) {
	var m message.Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"function_call_output","call_id":"c","output":[{"type":"input_text","text":"x"}]}`), &m))
	assert.JSONEq(t, `[{"type":"input_text","text":"x"}]`, m.Output)
}

func TestClone_DoesNotShareParts(t *testing.T) {
	orig := message.AssistantText("a")
	c := orig.Clone()
	c.Parts[0].Text = "b"
	assert.Equal(t, "a", orig.Parts[0].Text)
}
