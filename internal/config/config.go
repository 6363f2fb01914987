// Package config loads CLI settings from defaults, an optional config file,
// and SWARM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "SWARM"

// Config is the resolved CLI configuration.
type Config struct {
	Provider string `mapstructure:"provider"`
	// Model is empty when the provider's default should be used.
	Model         string `mapstructure:"model"`
	MaxTurns      int    `mapstructure:"max_turns"`
	TokenBudget   int    `mapstructure:"token_budget"`
	HandoffPrefix string `mapstructure:"handoff_prefix"`
	ExecuteTools  bool   `mapstructure:"execute_tools"`
	Workspace     string `mapstructure:"workspace"`
	MemoryFile    string `mapstructure:"memory_file"`

	Log       Log       `mapstructure:"log"`
	OpenAI    OpenAI    `mapstructure:"openai"`
	Anthropic Anthropic `mapstructure:"anthropic"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type OpenAI struct {
	BaseURL string `mapstructure:"base_url"`
}

type Anthropic struct {
	MaxTokens int64 `mapstructure:"max_tokens"`
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "")
	v.SetDefault("max_turns", 0)
	v.SetDefault("token_budget", 0)
	v.SetDefault("handoff_prefix", "transfer_to_")
	v.SetDefault("execute_tools", true)
	v.SetDefault("workspace", ".")
	v.SetDefault("memory_file", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("anthropic.max_tokens", 1024)
}

// Load reads file (when non-empty) into v, then decodes and validates.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var ErrInvalid = errors.New("config: invalid")

func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("%w: provider %q (want openai or anthropic)", ErrInvalid, c.Provider)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("%w: max_turns must be >= 0", ErrInvalid)
	}
	if c.TokenBudget < 0 {
		return fmt.Errorf("%w: token_budget must be >= 0", ErrInvalid)
	}
	if c.HandoffPrefix == "" {
		return fmt.Errorf("%w: handoff_prefix is required", ErrInvalid)
	}
	if c.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("%w: anthropic.max_tokens must be > 0", ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
