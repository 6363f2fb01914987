package swarm

import "errors"

var (
	// ErrMalformedArguments is returned when a tool call carries arguments
	// that are not a JSON object or do not decode into the tool's argument type.
	ErrMalformedArguments = errors.New("swarm: malformed tool arguments")
	// ErrResultCoercion is returned when a tool's return value cannot be
	// turned into a string.
	ErrResultCoercion = errors.New("swarm: tool result cannot be converted to a string")
	// ErrWindowOverBudget is returned when the newest history group alone
	// does not fit the configured token budget.
	ErrWindowOverBudget = errors.New("swarm: newest history group exceeds token budget")
)

// RunError is returned by Run on fatal failures. Response holds the
// conversation produced up to the failure.
type RunError struct {
	Err      error
	Response *Response
}

func (e *RunError) Error() string { return "swarm: run failed: " + e.Err.Error() }

func (e *RunError) Unwrap() error { return e.Err }
