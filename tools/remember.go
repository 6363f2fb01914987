package tools

import (
	"context"
	"fmt"

	"github.com/petasbytes/go-swarm/memory"
	"github.com/petasbytes/go-swarm/swarm"
)

type RememberInput struct {
	Name string `json:"name" jsonschema_description:"Short key for the fact, e.g. user_name."`
	Fact string `json:"fact" jsonschema_description:"The fact to keep. Empty forgets the key."`
}

// RememberTool stores facts in mem so later requests see them in the
// system prompt.
func RememberTool(mem *memory.Memory) *swarm.Function {
	return swarm.NewFunction("remember",
		"Remember a fact about the user or task for the rest of the session.",
		func(_ context.Context, in RememberInput) (any, error) {
			if in.Name == "" {
				return nil, fmt.Errorf("name is required")
			}
			mem.Remember(in.Name, in.Fact)
			if in.Fact == "" {
				return fmt.Sprintf("Forgot %s.", in.Name), nil
			}
			return fmt.Sprintf("Remembered %s.", in.Name), nil
		})
}
