package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-swarm/message"
	"github.com/petasbytes/go-swarm/swarm"
)

func newRunCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "run <prompt>",
		Short: "Send one prompt to the demo swarm and print the replies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			prompt := strings.Join(args, " ")
			cv := swarm.ContextVariables{"workspace": a.root.Dir()}
			resp, err := a.runner.Run(cmd.Context(), a.entry, []message.Message{message.User(prompt)}, a.runOptions(cv)...)
			var runErr *swarm.RunError
			if errors.As(err, &runErr) && runErr.Response != nil {
				printReplies(cmd.OutOrStdout(), runErr.Response.Messages)
			}
			if err != nil {
				return err
			}
			printReplies(cmd.OutOrStdout(), resp.Messages)
			if resp.Agent != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "final agent: %s\n", resp.Agent.Name)
			}
			return nil
		},
	}
}
