package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-swarm/swarm"
)

func newToolsCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool schemas each demo agent sends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			out, err := toolSchemas(a.agents)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

type agentTools struct {
	Agent string             `json:"agent"`
	Tools []swarm.ToolSchema `json:"tools"`
}

func toolSchemas(agents []*swarm.Agent) ([]agentTools, error) {
	out := make([]agentTools, 0, len(agents))
	for _, ag := range agents {
		at := agentTools{Agent: ag.Name, Tools: []swarm.ToolSchema{}}
		for _, t := range ag.Functions {
			s, err := swarm.ToolSchemaFor(t)
			if err != nil {
				return nil, err
			}
			at.Tools = append(at.Tools, s)
		}
		out = append(out, at)
	}
	return out, nil
}
