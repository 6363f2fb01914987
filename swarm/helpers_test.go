package swarm_test

import (
	"context"
	"sync"

	"github.com/petasbytes/go-swarm/message"
	"github.com/petasbytes/go-swarm/swarm"
)

// scriptedClient replays canned completions in order and records every
// request. Once the script runs out it answers with plain text.
type scriptedClient struct {
	mu       sync.Mutex
	replies  []*swarm.Completion
	err      error
	requests []*swarm.Request
}

func (c *scriptedClient) Create(_ context.Context, req *swarm.Request) (*swarm.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.replies) == 0 {
		return reply(message.AssistantText("done")), nil
	}
	next := c.replies[0]
	c.replies = c.replies[1:]
	return next, nil
}

func script(replies ...*swarm.Completion) *scriptedClient {
	return &scriptedClient{replies: replies}
}

func reply(items ...message.Message) *swarm.Completion {
	return &swarm.Completion{ID: "resp_test", Output: items}
}

func systemTexts(req *swarm.Request) []string {
	var out []string
	for _, m := range req.Input {
		if m.Role == message.RoleSystem {
			out = append(out, m.Text())
		}
	}
	return out
}

func toolNames(req *swarm.Request) []string {
	var out []string
	for _, t := range req.Tools {
		out = append(out, t.Name)
	}
	return out
}

func hasCall(msgs []message.Message, callID string) bool {
	for _, m := range msgs {
		if (m.IsFunctionCall() || m.IsFunctionCallOutput()) && m.CallID == callID {
			return true
		}
	}
	return false
}

// transferTo builds a handoff tool the way callers usually do.
func transferTo(name string, target *swarm.Agent) *swarm.Function {
	return swarm.NewAction("transfer_to_"+name, "Transfer to "+target.Name, func(context.Context) (any, error) {
		return target, nil
	})
}
