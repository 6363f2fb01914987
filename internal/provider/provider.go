// Package provider adapts completion services to swarm.CompletionClient.
package provider

import (
	"fmt"
	"net/http"

	"github.com/petasbytes/go-swarm/swarm"
)

const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
)

// Options configures an adapter. Empty fields fall back to SDK defaults,
// which read API keys from the environment.
type Options struct {
	APIKey     string
	BaseURL    string
	MaxTokens  int64 // anthropic only
	HTTPClient *http.Client
}

// New returns the adapter registered under name.
func New(name string, o Options) (swarm.CompletionClient, error) {
	switch name {
	case OpenAI, "":
		return NewOpenAIClient(o), nil
	case Anthropic:
		return NewAnthropicClient(o), nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", name)
	}
}
