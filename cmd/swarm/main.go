package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petasbytes/go-swarm/internal/config"
	"github.com/petasbytes/go-swarm/internal/logging"
	"github.com/petasbytes/go-swarm/internal/provider"
	"github.com/petasbytes/go-swarm/internal/safety"
	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/memory"
	"github.com/petasbytes/go-swarm/swarm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	root := &cobra.Command{
		Use:          "swarm",
		Short:        "Run a multi-agent swarm against a completion service",
		SilenceUsage: true,
	}
	f := root.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	f.String("provider", "openai", "completion provider (openai or anthropic)")
	f.String("model", "", "model name (defaults per provider)")
	f.Int("max-turns", 0, "maximum completion requests per run (0 = unlimited)")
	f.Int("token-budget", 0, "estimated input budget per request (0 = no windowing)")
	f.String("workspace", ".", "directory the file tools may read")
	f.String("memory-file", "", "JSON file holding remembered facts")
	f.String("log-level", "warn", "log level (debug, info, warn, error)")
	f.Bool("execute-tools", true, "execute tool calls locally")

	for key, flag := range map[string]string{
		"provider":      "provider",
		"model":         "model",
		"max_turns":     "max-turns",
		"token_budget":  "token-budget",
		"workspace":     "workspace",
		"memory_file":   "memory-file",
		"log.level":     "log-level",
		"execute_tools": "execute-tools",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	load := func() (*app, error) { return newApp(v, cfgFile) }
	root.AddCommand(newChatCmd(load), newRunCmd(load), newToolsCmd(load))
	return root
}

// app holds everything a subcommand needs.
type app struct {
	cfg      config.Config
	log      *logrus.Logger
	logClose io.Closer
	runner   *swarm.Runner
	mem      *memory.Memory
	root     *safety.Root
	entry    *swarm.Agent
	agents   []*swarm.Agent
}

func newApp(v *viper.Viper, cfgFile string) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, err
	}
	telemetry.SetLogger(log)

	client, err := provider.New(cfg.Provider, provider.Options{
		BaseURL:   cfg.OpenAI.BaseURL,
		MaxTokens: cfg.Anthropic.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	root, err := safety.NewRoot(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	mem := memory.New()
	if cfg.MemoryFile != "" {
		if mem, err = memory.Load(cfg.MemoryFile); err != nil {
			return nil, err
		}
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}
	entry, agents := demoSwarm(cfg.Model, cfg.HandoffPrefix, root, mem)

	r := swarm.New(client,
		swarm.WithLogger(log),
		swarm.WithHandoffPrefix(cfg.HandoffPrefix),
		swarm.WithTokenBudget(cfg.TokenBudget),
	)
	return &app{cfg: cfg, log: log, logClose: closer, runner: r, mem: mem, root: root, entry: entry, agents: agents}, nil
}

func defaultModel(p string) string {
	if p == provider.Anthropic {
		return string(provider.DefaultAnthropicModel)
	}
	return provider.DefaultOpenAIModel
}

func (a *app) runOptions(cv swarm.ContextVariables) []swarm.RunOption {
	opts := []swarm.RunOption{
		swarm.WithContextVariables(cv),
		swarm.WithExecuteTools(a.cfg.ExecuteTools),
	}
	if a.cfg.MaxTurns > 0 {
		opts = append(opts, swarm.WithMaxTurns(a.cfg.MaxTurns))
	}
	return opts
}

func (a *app) saveMemory() {
	if a.cfg.MemoryFile == "" {
		return
	}
	if err := a.mem.Save(a.cfg.MemoryFile); err != nil {
		a.log.WithError(err).Warn("failed to save memory")
	}
}

func (a *app) close() {
	a.saveMemory()
	_ = a.logClose.Close()
}
