package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/message"
	"github.com/petasbytes/go-swarm/swarm"
)

func newChatCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session with the demo swarm (Ctrl-C to quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.close()

			// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.chat(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) chat(ctx context.Context, in io.Reader, out io.Writer) error {
	inputCh := make(chan string)
	scanner := bufio.NewScanner(in)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var history []message.Message
	agent := a.entry
	cv := swarm.ContextVariables{"workspace": a.root.Dir()}
	fmt.Fprintln(out, "Chat with the swarm (Ctrl-C to quit)")

	for {
		fmt.Fprintf(out, "\u001b[94mYou\u001b[0m: ")
		var (
			user string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nExiting...")
			return nil
		case user, ok = <-inputCh:
			if !ok {
				return scanner.Err()
			}
		}
		if user == "" {
			continue
		}
		telemetry.EmitLocalFeatures(ctx, user)

		resp, err := a.runner.Run(ctx, agent, append(history, message.User(user)), a.runOptions(cv)...)
		if err != nil {
			// A failed turn can end on an unanswered function_call; keep the
			// history from before the turn.
			var runErr *swarm.RunError
			if errors.As(err, &runErr) && runErr.Response != nil {
				printReplies(out, runErr.Response.Messages)
			}
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nExiting...")
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		printReplies(out, resp.Messages)
		history = append(history, message.User(user))
		history = append(history, resp.Messages...)
		if resp.Agent != nil {
			agent = resp.Agent
		}
		cv = resp.ContextVariables
		a.saveMemory()
	}
}

func printReplies(out io.Writer, msgs []message.Message) {
	for _, m := range msgs {
		switch {
		case m.IsFunctionCall():
			fmt.Fprintf(out, "\u001b[92m%s\u001b[0m: %s(%s)\n", m.Sender, m.Name, m.Arguments)
		case m.Role == message.RoleAssistant && m.Text() != "":
			fmt.Fprintf(out, "\u001b[93m%s\u001b[0m: %s\n", m.Sender, m.Text())
		}
	}
}
