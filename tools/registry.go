package tools

import (
	"github.com/petasbytes/go-swarm/memory"
	"github.com/petasbytes/go-swarm/swarm"
)

// Registry returns the workspace tools for ws, plus remember when mem is
// non-nil.
func Registry(ws Workspace, mem *memory.Memory) []swarm.Tool {
	out := []swarm.Tool{ReadFileTool(ws), ListFilesTool(ws)}
	if mem != nil {
		out = append(out, RememberTool(mem))
	}
	return out
}
