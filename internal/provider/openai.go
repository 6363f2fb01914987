package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petasbytes/go-swarm/swarm"
)

const DefaultOpenAIModel = "gpt-4.1-mini"

// OpenAIClient posts swarm requests to the Responses API as-is.
type OpenAIClient struct {
	client openai.Client
}

func NewOpenAIClient(o Options) *OpenAIClient {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// Create sends req to POST /responses. Service errors are returned unchanged
// and carry the response body via RawJSON.
func (c *OpenAIClient) Create(ctx context.Context, req *swarm.Request) (*swarm.Completion, error) {
	var out swarm.Completion
	if err := c.client.Post(ctx, "responses", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
