package swarm

// Instructions is the system prompt of an agent: StaticInstructions or
// DynamicInstructions.
type Instructions interface {
	resolve(cv ContextVariables) string
}

// StaticInstructions are sent verbatim.
type StaticInstructions string

func (s StaticInstructions) resolve(ContextVariables) string { return string(s) }

// DynamicInstructions are computed from a copy of the current context
// variables before every request.
type DynamicInstructions func(cv ContextVariables) string

func (d DynamicInstructions) resolve(cv ContextVariables) string {
	if d == nil {
		return ""
	}
	return d(cv.Clone())
}

// PromptSource supplies extra system prompt content, such as remembered facts.
type PromptSource interface {
	PromptContent() string
}

// Strategy controls how the run loop treats an agent once it becomes active.
type Strategy struct {
	// PreventAgentReentry hides tools that already triggered a handoff in
	// this run from the agent's tool list.
	PreventAgentReentry bool
	// ResetMessageOnSwitch narrows the request history to the latest user
	// message when control switches to this agent.
	ResetMessageOnSwitch bool
}

// Agent is a named configuration of model, instructions and tools. Agents are
// compared by pointer identity and must not be mutated while a run uses them.
type Agent struct {
	Name         string
	Model        string
	Instructions Instructions
	Memory       PromptSource
	Functions    []Tool
	Strategy     Strategy

	// Optional generation parameters. Nil values are not sent.
	ToolChoice        any
	Temperature       *float64
	ParallelToolCalls *bool

	// NoisyToolCalls names tools whose calls and outputs are stripped from
	// the history sent to the model.
	NoisyToolCalls []string
}

func (a *Agent) instructions(cv ContextVariables) string {
	if a.Instructions == nil {
		return ""
	}
	return a.Instructions.resolve(cv)
}

func (a *Agent) memoryPrompt() string {
	if a.Memory == nil {
		return ""
	}
	return a.Memory.PromptContent()
}

func (a *Agent) isNoisy(name string) bool {
	for _, n := range a.NoisyToolCalls {
		if n == name {
			return true
		}
	}
	return false
}
