// Package swarm runs multi-turn conversations between a caller and a set of
// cooperating agents backed by a Responses-style completion service.
//
// A Runner repeatedly builds a request for the active agent, sends it through
// a CompletionClient, appends the returned items to the conversation history
// and dispatches any function calls to the agent's tools. A tool may hand the
// conversation off to another agent by returning an *Agent or a Result with
// Agent set, and may update the shared ContextVariables, which are injected
// into tool arguments but never shown to the model.
//
// Basic usage:
//
//	triage := &swarm.Agent{Name: "Triage", Model: "gpt-4.1", Instructions: swarm.StaticInstructions("Route the user.")}
//	r := swarm.New(client, swarm.WithLogger(logger))
//	resp, err := r.Run(ctx, triage, []message.Message{message.User("hi")})
package swarm
