package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/go-swarm/message"
	"github.com/petasbytes/go-swarm/swarm"
)

const (
	DefaultAnthropicModel     = anthropic.ModelClaude3_7SonnetLatest
	DefaultAnthropicMaxTokens = 1024
)

// AnthropicClient maps swarm requests onto the Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	maxTokens int64
}

func NewAnthropicClient(o Options) *AnthropicClient {
	var opts []option.RequestOption
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	opts = append(opts, option.WithMaxRetries(0))
	maxTokens := o.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), maxTokens: maxTokens}
}

func (c *AnthropicClient) Create(ctx context.Context, req *swarm.Request) (*swarm.Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: c.maxTokens,
	}
	params.System, params.Messages = toAnthropicMessages(req.Input)
	params.Tools = toAnthropicTools(req.Tools)
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if len(params.Tools) > 0 {
		params.ToolChoice = toAnthropicToolChoice(req.ToolChoice, req.ParallelToolCalls)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return fromAnthropicMessage(msg), nil
}

// toAnthropicMessages splits system text from the conversation and folds
// consecutive items of the same role into one message. Reasoning items are
// provider specific and dropped.
func toAnthropicMessages(input []message.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var msgs []anthropic.MessageParam
	add := func(role anthropic.MessageParamRole, block anthropic.ContentBlockParamUnion) {
		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			msgs[n-1].Content = append(msgs[n-1].Content, block)
			return
		}
		msgs = append(msgs, anthropic.MessageParam{Role: role, Content: []anthropic.ContentBlockParamUnion{block}})
	}

	for _, m := range input {
		switch {
		case m.IsFunctionCall():
			args := strings.TrimSpace(m.Arguments)
			if args == "" {
				args = "{}"
			}
			add(anthropic.MessageParamRoleAssistant, anthropic.NewToolUseBlock(m.CallID, json.RawMessage(args), m.Name))
		case m.IsFunctionCallOutput():
			add(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(m.CallID, m.Output, false))
		case m.IsReasoning():
		case m.Role == message.RoleSystem || m.Role == message.RoleDeveloper:
			if text := m.Text(); text != "" {
				system = append(system, anthropic.TextBlockParam{Text: text})
			}
		default:
			text := m.Text()
			if text == "" {
				continue
			}
			role := anthropic.MessageParamRoleUser
			if m.Role == message.RoleAssistant {
				role = anthropic.MessageParamRoleAssistant
			}
			add(role, anthropic.NewTextBlock(text))
		}
	}
	return system, msgs
}

// toAnthropicTools converts function schemas. Builtin tools belong to the
// Responses API and are skipped.
func toAnthropicTools(schemas []swarm.ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(schemas))
	for _, s := range schemas {
		if s.Type != "function" {
			continue
		}
		input := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if s.Parameters != nil {
			if s.Parameters.Properties != nil {
				input.Properties = s.Parameters.Properties
			}
			input.Required = s.Parameters.Required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        s.Name,
			Description: anthropic.String(s.Description),
			InputSchema: input,
		}})
	}
	return out
}

func toAnthropicToolChoice(choice any, parallel *bool) anthropic.ToolChoiceUnionParam {
	disableParallel := parallel != nil && !*parallel
	if s, _ := choice.(string); s == "required" {
		p := &anthropic.ToolChoiceAnyParam{}
		if disableParallel {
			p.DisableParallelToolUse = anthropic.Bool(true)
		}
		return anthropic.ToolChoiceUnionParam{OfAny: p}
	}
	p := &anthropic.ToolChoiceAutoParam{}
	if disableParallel {
		p.DisableParallelToolUse = anthropic.Bool(true)
	}
	return anthropic.ToolChoiceUnionParam{OfAuto: p}
}

func fromAnthropicMessage(msg *anthropic.Message) *swarm.Completion {
	comp := &swarm.Completion{ID: msg.ID, Model: string(msg.Model)}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			comp.Output = append(comp.Output, message.AssistantText(v.Text))
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through as the call arguments
			comp.Output = append(comp.Output, message.FunctionCall(v.ID, v.Name, v.JSON.Input.Raw()))
		}
	}
	return comp
}
