package swarm

// AgentTracker follows the active agent across turns of one run and
// remembers which tools have triggered a handoff.
type AgentTracker struct {
	previous *Agent
	current  *Agent
	tracked  map[string]struct{}
	order    []string
}

// NewAgentTracker starts tracking with a as the current agent.
func NewAgentTracker(a *Agent) *AgentTracker {
	return &AgentTracker{current: a, tracked: make(map[string]struct{})}
}

// Update records a as the active agent for the coming turn.
func (t *AgentTracker) Update(a *Agent) {
	t.previous = t.current
	t.current = a
}

func (t *AgentTracker) Current() *Agent { return t.current }

// Switched reports whether the last Update changed the active agent.
func (t *AgentTracker) Switched() bool { return t.previous != t.current }

// ResetMessageOnSwitch reports whether the last Update switched to an agent
// whose strategy asks for a history reset.
func (t *AgentTracker) ResetMessageOnSwitch() bool {
	return t.Switched() && t.current != nil && t.current.Strategy.ResetMessageOnSwitch
}

// AddTrackedToolName records a handoff tool. The set only grows.
func (t *AgentTracker) AddTrackedToolName(name string) {
	if name == "" {
		return
	}
	if _, ok := t.tracked[name]; ok {
		return
	}
	t.tracked[name] = struct{}{}
	t.order = append(t.order, name)
}

// TrackedToolNames returns the recorded handoff tools in the order first seen.
func (t *AgentTracker) TrackedToolNames() []string {
	return append([]string(nil), t.order...)
}

func (t *AgentTracker) isTracked(name string) bool {
	_, ok := t.tracked[name]
	return ok
}
