package main

import (
	"fmt"

	"github.com/petasbytes/go-swarm/internal/safety"
	"github.com/petasbytes/go-swarm/memory"
	"github.com/petasbytes/go-swarm/swarm"
	"github.com/petasbytes/go-swarm/tools"
)

// demoSwarm wires a triage agent that hands file questions to a files agent.
func demoSwarm(model, prefix string, root *safety.Root, mem *memory.Memory) (*swarm.Agent, []*swarm.Agent) {
	triage := &swarm.Agent{
		Name:  "Triage",
		Model: model,
		Instructions: swarm.StaticInstructions("You are a triage agent. Answer general questions yourself. " +
			"Transfer to the files agent for anything about files in the workspace. " +
			"Use remember to keep facts the user asks you to remember."),
		Memory: mem,
	}
	files := &swarm.Agent{
		Name:  "Files",
		Model: model,
		Instructions: swarm.DynamicInstructions(func(cv swarm.ContextVariables) string {
			return fmt.Sprintf("You answer questions about files in the workspace at %v. "+
				"Use list_files and read_file; paths are relative to the workspace. "+
				"Transfer back to triage when the question is not about files.", cv["workspace"])
		}),
		Memory:   mem,
		Strategy: swarm.Strategy{PreventAgentReentry: true},
	}
	triage.Functions = []swarm.Tool{tools.TransferWithPrefix(prefix, files), tools.RememberTool(mem)}
	files.Functions = append(tools.Registry(root, nil), tools.TransferWithPrefix(prefix, triage))
	return triage, []*swarm.Agent{triage, files}
}
