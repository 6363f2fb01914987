package swarm_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-swarm/message"
	"github.com/petasbytes/go-swarm/swarm"
)

func TestRun_NoToolsSingleTextReply(t *testing.T) {
	a := &swarm.Agent{Name: "A", Model: "m", Instructions: swarm.StaticInstructions("You are A.")}
	client := script(reply(message.AssistantText("hello there")))

	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("hi")})
	require.NoError(t, err)

	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "hello there", resp.Messages[0].Text())
	assert.Equal(t, "A", resp.Messages[0].Sender)
	assert.Same(t, a, resp.Agent)
	assert.Equal(t, swarm.ContextVariables{}, resp.ContextVariables)

	require.Len(t, client.requests, 1)
	assert.Empty(t, client.requests[0].Tools)
	assert.Equal(t, []string{"You are A."}, systemTexts(client.requests[0]))
}

func TestRun_InputIsNotMutated(t *testing.T) {
	a := &swarm.Agent{Name: "A"}
	input := []message.Message{message.User("hi")}
	cv := swarm.ContextVariables{"k": "v"}

	setter := swarm.NewFunction("set", "", func(_ context.Context, _ struct{}) (any, error) {
		return swarm.Result{Value: "ok", ContextVariables: swarm.ContextVariables{"k": "changed"}}, nil
	})
	a.Functions = []swarm.Tool{setter}
	client := script(reply(message.FunctionCall("c1", "set", "{}")))

	resp, err := swarm.New(client).Run(context.Background(), a, input, swarm.WithContextVariables(cv))
	require.NoError(t, err)

	assert.Equal(t, "changed", resp.ContextVariables["k"])
	assert.Equal(t, "v", cv["k"])
	assert.Len(t, input, 1)
}

func TestRun_HandoffSwitchesAgentAndHidesReentryTool(t *testing.T) {
	b := &swarm.Agent{Name: "B", Strategy: swarm.Strategy{PreventAgentReentry: true}}
	a := &swarm.Agent{Name: "A"}
	toB := transferTo("b", b)
	a.Functions = []swarm.Tool{toB}
	b.Functions = []swarm.Tool{toB, lookupFunction()}

	client := script(
		reply(message.FunctionCall("call_1", "transfer_to_b", "")),
		reply(message.AssistantText("B here")),
	)
	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("help")})
	require.NoError(t, err)

	assert.Same(t, b, resp.Agent)
	require.Len(t, client.requests, 2)
	assert.Equal(t, []string{"transfer_to_b"}, toolNames(client.requests[0]))
	assert.Equal(t, []string{"lookup"}, toolNames(client.requests[1]))

	// The stale transfer is not replayed to B.
	assert.False(t, hasCall(client.requests[1].Input, "call_1"))

	last := resp.Messages[len(resp.Messages)-1]
	assert.Equal(t, "B here", last.Text())
	assert.Equal(t, "B", last.Sender)
}

func TestRun_HandoffToolStaysWithoutReentryStrategy(t *testing.T) {
	b := &swarm.Agent{Name: "B"}
	a := &swarm.Agent{Name: "A"}
	toB := transferTo("b", b)
	a.Functions = []swarm.Tool{toB}
	b.Functions = []swarm.Tool{toB}

	client := script(reply(message.FunctionCall("call_1", "transfer_to_b", "")))
	_, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("help")})
	require.NoError(t, err)

	require.Len(t, client.requests, 2)
	assert.Equal(t, []string{"transfer_to_b"}, toolNames(client.requests[1]))
}

func TestRun_SanitizeRemovesHandoffCallsReasoningAndOutputs(t *testing.T) {
	a := &swarm.Agent{Name: "A"}
	input := []message.Message{
		message.User("hi"),
		message.Reasoning("rs_1", "thinking"),
		message.FunctionCall("h1", "transfer_to_sales", "{}"),
		message.FunctionCallOutput("h1", "successfully transferred"),
		message.Reasoning("rs_2"),
		message.FunctionCall("k1", "lookup", "{}"),
		message.FunctionCallOutput("k1", "found"),
		message.AssistantText("answer"),
	}
	client := script(reply(message.AssistantText("ok")))

	_, err := swarm.New(client).Run(context.Background(), a, input)
	require.NoError(t, err)

	sent := client.requests[0].Input[1:] // skip instructions
	require.Len(t, sent, 5)
	assert.True(t, sent[0].IsUser())
	assert.Equal(t, "rs_2", sent[1].ID)
	assert.Equal(t, "k1", sent[2].CallID)
	assert.Equal(t, "k1", sent[3].CallID)
	assert.Equal(t, "answer", sent[4].Text())
}

func TestRun_CustomHandoffPrefix(t *testing.T) {
	a := &swarm.Agent{Name: "A"}
	input := []message.Message{
		message.User("hi"),
		message.FunctionCall("h1", "handoff_sales", "{}"),
		message.FunctionCallOutput("h1", "ok"),
		message.FunctionCall("h2", "transfer_to_x", "{}"),
		message.FunctionCallOutput("h2", "ok"),
	}
	client := script(reply(message.AssistantText("ok")))

	_, err := swarm.New(client, swarm.WithHandoffPrefix("handoff_")).Run(context.Background(), a, input)
	require.NoError(t, err)

	assert.False(t, hasCall(client.requests[0].Input, "h1"))
	assert.True(t, hasCall(client.requests[0].Input, "h2"))
}

func TestRun_UnknownToolIsRecoverable(t *testing.T) {
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{lookupFunction()}}
	client := script(
		reply(message.FunctionCall("c1", "missing_tool", `{"x":1}`)),
		reply(message.AssistantText("sorry")),
	)

	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("hi")})
	require.NoError(t, err)

	var outputs []message.Message
	for _, m := range resp.Messages {
		if m.IsFunctionCallOutput() {
			outputs = append(outputs, m)
		}
	}
	require.Len(t, outputs, 1)
	assert.Equal(t, "c1", outputs[0].CallID)
	assert.Equal(t, "Error: Tool missing_tool not found.", outputs[0].Output)
	assert.Len(t, client.requests, 2)
}

func TestRun_MaxTurnsOneStopsAfterOneCycle(t *testing.T) {
	calls := 0
	ping := swarm.NewAction("ping", "", func(context.Context) (any, error) {
		calls++
		return "pong", nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{ping}}
	client := swarm.CompletionFunc(func(context.Context, *swarm.Request) (*swarm.Completion, error) {
		return reply(message.FunctionCall("c", "ping", "")), nil
	})
	counting := &countingClient{next: client}

	resp, err := swarm.New(counting).Run(context.Background(), a, []message.Message{message.User("go")}, swarm.WithMaxTurns(1))
	require.NoError(t, err)

	assert.Equal(t, 1, counting.n)
	assert.Equal(t, 1, calls)
	assert.Len(t, resp.Messages, 2) // call + output
}

type countingClient struct {
	n    int
	next swarm.CompletionClient
}

func (c *countingClient) Create(ctx context.Context, req *swarm.Request) (*swarm.Completion, error) {
	c.n++
	return c.next.Create(ctx, req)
}

func TestRun_ExecuteToolsFalseStopsAtFirstCall(t *testing.T) {
	called := false
	ping := swarm.NewAction("ping", "", func(context.Context) (any, error) {
		called = true
		return "pong", nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{ping}}
	client := script(reply(message.FunctionCall("c", "ping", "")))

	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")}, swarm.WithExecuteTools(false))
	require.NoError(t, err)

	assert.False(t, called)
	require.Len(t, resp.Messages, 1)
	assert.True(t, resp.Messages[0].IsFunctionCall())
}

func TestRun_NoisyPairHiddenFromNextRequestButReturned(t *testing.T) {
	logEvent := swarm.NewFunction("log_event", "", func(_ context.Context, args struct {
		Event string `json:"event"`
	}) (any, error) {
		return "logged " + args.Event, nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{logEvent}, NoisyToolCalls: []string{"log_event"}}
	client := script(
		reply(message.Reasoning("rs_1"), message.FunctionCall("n1", "log_event", `{"event":"start"}`)),
		reply(message.AssistantText("done")),
	)

	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("hi")})
	require.NoError(t, err)

	require.Len(t, client.requests, 2)
	assert.False(t, hasCall(client.requests[1].Input, "n1"))
	for _, m := range client.requests[1].Input {
		assert.False(t, m.IsReasoning())
	}

	assert.True(t, hasCall(resp.Messages, "n1"))
	require.Len(t, resp.Messages, 4)
	assert.Equal(t, "logged start", resp.Messages[2].Output)
}

func TestRun_ContextVariablesInjectedAndMergedInOrder(t *testing.T) {
	type counterArgs struct {
		CV swarm.ContextVariables `json:"context_variables"`
	}
	var seen []any
	incr := swarm.NewFunction("incr", "", func(_ context.Context, args counterArgs) (any, error) {
		n, _ := args.CV["n"].(int)
		seen = append(seen, args.CV["n"])
		return swarm.Result{Value: "ok", ContextVariables: swarm.ContextVariables{"n": n + 1}}, nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{incr}}
	client := script(reply(
		message.FunctionCall("c1", "incr", `{}`),
		message.FunctionCall("c2", "incr", `{}`),
	))

	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")},
		swarm.WithContextVariables(swarm.ContextVariables{"n": 1}))
	require.NoError(t, err)

	assert.Equal(t, []any{1, 2}, seen, "second call sees the first call's update")
	assert.Equal(t, 3, resp.ContextVariables["n"])
}

func TestRun_RawFunctionReceivesContextVariables(t *testing.T) {
	var got string
	props := jsonschema.NewProperties()
	props.Set("path", &jsonschema.Schema{Type: "string"})
	props.Set(swarm.ContextVariablesKey, &jsonschema.Schema{Type: "object"})
	params := &jsonschema.Schema{Type: "object", Properties: props, Required: []string{"path"}}
	raw := swarm.NewRawFunction("raw", "", params, func(_ context.Context, args json.RawMessage) (any, error) {
		got = string(args)
		return "ok", nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{raw}}
	client := script(reply(message.FunctionCall("c1", "raw", `{"path":"a.txt"}`)))

	_, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")},
		swarm.WithContextVariables(swarm.ContextVariables{"user": "ada"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"path":"a.txt","context_variables":{"user":"ada"}}`, got)
}

func TestRun_MultipleHandoffsLastWins(t *testing.T) {
	b := &swarm.Agent{Name: "B"}
	c := &swarm.Agent{Name: "C", Strategy: swarm.Strategy{PreventAgentReentry: true}}
	toB, toC := transferTo("b", b), transferTo("c", c)
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{toB, toC}}
	c.Functions = []swarm.Tool{toB, toC}

	logger, hook := test.NewNullLogger()
	client := script(reply(
		message.FunctionCall("h1", "transfer_to_b", ""),
		message.FunctionCall("h2", "transfer_to_c", ""),
	))

	resp, err := swarm.New(client, swarm.WithLogger(logger)).Run(context.Background(), a, []message.Message{message.User("go")})
	require.NoError(t, err)

	assert.Same(t, c, resp.Agent)
	// Only the tool whose result won is tracked.
	assert.Equal(t, []string{"transfer_to_b"}, toolNames(client.requests[1]))

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRun_ResetOnSwitchNarrowsRequestButKeepsResponse(t *testing.T) {
	b := &swarm.Agent{Name: "B", Strategy: swarm.Strategy{ResetMessageOnSwitch: true}}
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{transferTo("b", b)}}
	input := []message.Message{
		message.User("first"),
		message.AssistantText("earlier answer"),
		message.User("second"),
	}
	client := script(
		reply(message.AssistantText("let me transfer"), message.FunctionCall("h1", "transfer_to_b", "")),
		reply(message.AssistantText("B answer")),
	)

	resp, err := swarm.New(client).Run(context.Background(), a, input)
	require.NoError(t, err)

	sent := client.requests[1].Input
	require.Len(t, sent, 2)
	assert.Equal(t, message.RoleSystem, sent[0].Role)
	assert.Equal(t, "second", sent[1].Text())

	texts := []string{}
	for _, m := range resp.Messages {
		texts = append(texts, m.Text())
	}
	assert.Equal(t, []string{"let me transfer", "B answer"}, texts)
}

func TestRun_ToolErrorIsRecoverable(t *testing.T) {
	failing := swarm.NewAction("flaky", "", func(context.Context) (any, error) {
		return nil, errors.New("disk on fire")
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{failing}}
	client := script(reply(message.FunctionCall("c1", "flaky", "")))

	resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")})
	require.NoError(t, err)
	assert.Equal(t, "Error: disk on fire", resp.Messages[1].Output)
}

func TestRun_MalformedArgumentsAreFatal(t *testing.T) {
	for _, args := range []string{`{"query":`, `[1,2]`, `{"query": 5}`} {
		t.Run(args, func(t *testing.T) {
			a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{lookupFunction()}}
			client := script(reply(message.AssistantText("calling"), message.FunctionCall("c1", "lookup", args)))

			resp, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")})
			require.Error(t, err)
			assert.ErrorIs(t, err, swarm.ErrMalformedArguments)

			var runErr *swarm.RunError
			require.ErrorAs(t, err, &runErr)
			assert.Same(t, resp, runErr.Response)
			require.Len(t, resp.Messages, 2, "partial conversation is returned")
			assert.Equal(t, "calling", resp.Messages[0].Text())
		})
	}
}

func TestRun_UncoercibleResultIsFatal(t *testing.T) {
	bad := swarm.NewAction("bad", "", func(context.Context) (any, error) {
		return make(chan int), nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{bad}}
	client := script(reply(message.FunctionCall("c1", "bad", "")))

	_, err := swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")})
	assert.ErrorIs(t, err, swarm.ErrResultCoercion)
}

type nilStringer struct{ inner *string }

func (s *nilStringer) String() string { return *s.inner }

func TestRun_PanickingStringerIsCoercionFailure(t *testing.T) {
	bad := swarm.NewAction("bad", "", func(context.Context) (any, error) {
		return &nilStringer{}, nil
	})
	a := &swarm.Agent{Name: "A", Functions: []swarm.Tool{bad}}
	client := script(reply(message.AssistantText("calling"), message.FunctionCall("c1", "bad", "")))

	var resp *swarm.Response
	var err error
	require.NotPanics(t, func() {
		resp, err = swarm.New(client).Run(context.Background(), a, []message.Message{message.User("go")})
	})
	require.ErrorIs(t, err, swarm.ErrResultCoercion)

	var runErr *swarm.RunError
	require.ErrorAs(t, err, &runErr)
	require.NotNil(t, runErr.Response)
	require.NotNil(t, resp)
	assert.True(t, hasCall(resp.Messages, "c1"), "partial conversation is kept")
}

type apiError struct{ raw string }

func (e *apiError) Error() string   { return "400 Bad Request" }
func (e *apiError) RawJSON() string { return e.raw }

func TestRun_UpstreamErrorLoggedAndReturned(t *testing.T) {
	upstream := &apiError{raw: `{"error":{"message":"invalid input","type":"invalid_request_error"}}`}
	logger, hook := test.NewNullLogger()
	client := &scriptedClient{err: upstream}

	resp, err := swarm.New(client, swarm.WithLogger(logger)).Run(context.Background(), &swarm.Agent{Name: "A"}, []message.Message{message.User("hi")})
	require.Error(t, err)

	var got *apiError
	require.ErrorAs(t, err, &got)
	assert.Same(t, upstream, got)
	assert.Empty(t, resp.Messages)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, upstream.raw, entry.Data["payload"])
	assert.Equal(t, "invalid input", entry.Data["upstream_message"])
}

func TestRun_MetadataReachesRequest(t *testing.T) {
	client := script()
	_, err := swarm.New(client).Run(context.Background(), &swarm.Agent{Name: "A"}, []message.Message{message.User("hi")},
		swarm.WithMetadata(map[string]any{"agent": swarm.AgentNameSentinel}), swarm.WithModelOverride("small"))
	require.NoError(t, err)

	assert.Equal(t, "A", client.requests[0].Metadata["agent"])
	assert.Equal(t, "small", client.requests[0].Model)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := script()

	_, err := swarm.New(client).Run(ctx, &swarm.Agent{Name: "A"}, []message.Message{message.User("hi")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.requests)
}

func TestRun_NilAgentReturnsEmptyResponse(t *testing.T) {
	resp, err := swarm.New(script()).Run(context.Background(), nil, []message.Message{message.User("hi")})
	require.NoError(t, err)
	assert.Empty(t, resp.Messages)
	assert.Nil(t, resp.Agent)
}
