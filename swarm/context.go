package swarm

import "maps"

// ContextVariablesKey is the reserved parameter name under which the current
// context variables are injected into tool arguments. It never appears in a
// tool schema sent to the model.
const ContextVariablesKey = "context_variables"

// ContextVariables is caller-supplied state shared with tools across turns.
type ContextVariables map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (c ContextVariables) Clone() ContextVariables {
	out := make(ContextVariables, len(c))
	maps.Copy(out, c)
	return out
}

// Merge returns a new map holding c overlaid with o. Keys in o win.
func (c ContextVariables) Merge(o ContextVariables) ContextVariables {
	out := c.Clone()
	maps.Copy(out, o)
	return out
}
