package swarm

import (
	"context"

	"github.com/petasbytes/go-swarm/message"
)

// CompletionClient sends one request to the completion service. Failures are
// returned unchanged; the run loop does not retry.
type CompletionClient interface {
	Create(ctx context.Context, req *Request) (*Completion, error)
}

// Completion is the subset of a Responses API response the run loop consumes.
type Completion struct {
	ID     string            `json:"id"`
	Model  string            `json:"model"`
	Output []message.Message `json:"output"`
}

// CompletionFunc adapts a function to CompletionClient.
type CompletionFunc func(ctx context.Context, req *Request) (*Completion, error)

func (f CompletionFunc) Create(ctx context.Context, req *Request) (*Completion, error) {
	return f(ctx, req)
}
