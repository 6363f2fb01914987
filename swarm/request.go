package swarm

import (
	"fmt"

	"github.com/petasbytes/go-swarm/internal/windowing"
	"github.com/petasbytes/go-swarm/message"
)

// AgentNameSentinel is replaced by the active agent's name wherever it
// appears as a metadata value.
const AgentNameSentinel = "agent_name"

// Request is the body sent to the completion service for one turn.
type Request struct {
	Model             string            `json:"model"`
	Input             []message.Message `json:"input"`
	Tools             []ToolSchema      `json:"tools,omitempty"`
	ToolChoice        any               `json:"tool_choice,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty"`
	ParallelToolCalls *bool             `json:"parallel_tool_calls,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
}

// WindowStats describes how the history was cut to fit a token budget.
type WindowStats = windowing.Stats

// RequestParams are the inputs of BuildRequest.
type RequestParams struct {
	Tracker          *AgentTracker
	History          []message.Message // tombstone-free
	ContextVariables ContextVariables
	ModelOverride    string
	Metadata         map[string]any
	// TokenBudget bounds the estimated input size when positive. System
	// messages are always sent and are charged first.
	TokenBudget int
}

// BuildRequest assembles the request for the tracker's current agent.
func BuildRequest(p RequestParams) (*Request, WindowStats, error) {
	var stats WindowStats
	agent := p.Tracker.Current()
	if agent == nil {
		return nil, stats, fmt.Errorf("swarm: no active agent")
	}

	system := []message.Message{message.System(agent.instructions(p.ContextVariables))}
	if mem := agent.memoryPrompt(); mem != "" {
		system = append(system, message.System(mem))
	}

	history := p.History
	if len(agent.NoisyToolCalls) > 0 {
		h := message.NewHistory(history)
		h.DropToolCalls(func(m message.Message) bool { return agent.isNoisy(m.Name) })
		history = h.Compact()
	}

	if p.TokenBudget > 0 {
		counter := windowing.HeuristicCounter{}
		budget := p.TokenBudget
		for _, m := range system {
			budget -= counter.CountMessage(m)
		}
		history, stats = windowing.PrepareSendWindow(history, budget, counter)
		stats.Budget = p.TokenBudget
		if stats.OverBudgetNewest {
			return nil, stats, ErrWindowOverBudget
		}
	}

	input := make([]message.Message, 0, len(system)+len(history))
	for _, m := range append(system, history...) {
		input = append(input, m.WithoutSender())
	}

	var tools []ToolSchema
	for _, fn := range agent.Functions {
		schema, err := ToolSchemaFor(fn)
		if err != nil {
			return nil, stats, fmt.Errorf("agent %s: %w", agent.Name, err)
		}
		if agent.Strategy.PreventAgentReentry && schema.builtin == nil && p.Tracker.isTracked(schema.Name) {
			continue
		}
		tools = append(tools, schema)
	}

	model := agent.Model
	if p.ModelOverride != "" {
		model = p.ModelOverride
	}
	req := &Request{
		Model:       model,
		Input:       input,
		Tools:       tools,
		ToolChoice:  agent.ToolChoice,
		Temperature: agent.Temperature,
	}
	if len(tools) > 0 {
		req.ParallelToolCalls = agent.ParallelToolCalls
	}
	if p.Metadata != nil {
		req.Metadata, _ = substituteAgentName(p.Metadata, agent.Name).(map[string]any)
	}
	return req, stats, nil
}

// substituteAgentName copies v, replacing every string equal to
// AgentNameSentinel with name.
func substituteAgentName(v any, name string) any {
	switch t := v.(type) {
	case string:
		if t == AgentNameSentinel {
			return name
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = substituteAgentName(val, name)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = substituteAgentName(val, name)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = substituteAgentName(val, name)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = substituteAgentName(val, name)
		}
		return out
	default:
		return v
	}
}
