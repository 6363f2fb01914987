package swarm

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/message"
)

// Response is the outcome of Run.
type Response struct {
	// Messages produced during this run, excluding the caller's input.
	Messages         []message.Message
	Agent            *Agent
	ContextVariables ContextVariables
}

// Runner drives conversations against a CompletionClient. It holds no
// per-run state and is safe for concurrent use.
type Runner struct {
	client        CompletionClient
	log           logrus.FieldLogger
	handoffPrefix string
	tokenBudget   int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithHandoffPrefix changes the name prefix of handoff tools.
func WithHandoffPrefix(p string) Option {
	return func(r *Runner) {
		if p != "" {
			r.handoffPrefix = p
		}
	}
}

// WithTokenBudget bounds the estimated input size of every request. Zero
// disables windowing.
func WithTokenBudget(n int) Option {
	return func(r *Runner) { r.tokenBudget = n }
}

func New(client CompletionClient, opts ...Option) *Runner {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	r := &Runner{client: client, log: discard, handoffPrefix: DefaultHandoffPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type runConfig struct {
	contextVariables ContextVariables
	modelOverride    string
	maxTurns         int
	executeTools     bool
	metadata         map[string]any
}

// RunOption configures a single Run call.
type RunOption func(*runConfig)

func WithContextVariables(cv ContextVariables) RunOption {
	return func(c *runConfig) { c.contextVariables = cv }
}

// WithModelOverride sends model instead of each agent's own model.
func WithModelOverride(model string) RunOption {
	return func(c *runConfig) { c.modelOverride = model }
}

// WithMaxTurns stops the run once n history items were produced. n <= 0
// means unbounded.
func WithMaxTurns(n int) RunOption {
	return func(c *runConfig) { c.maxTurns = n }
}

// WithExecuteTools(false) ends the run at the first turn instead of
// dispatching tool calls.
func WithExecuteTools(execute bool) RunOption {
	return func(c *runConfig) { c.executeTools = execute }
}

// WithMetadata attaches request metadata. Values equal to AgentNameSentinel
// are replaced by the active agent's name.
func WithMetadata(md map[string]any) RunOption {
	return func(c *runConfig) { c.metadata = md }
}

// Run converses with agent starting from msgs until the model stops calling
// tools, tool execution is disabled or the turn limit is reached. Fatal
// failures are returned as *RunError carrying the partial Response.
func (r *Runner) Run(ctx context.Context, agent *Agent, msgs []message.Message, opts ...RunOption) (*Response, error) {
	cfg := runConfig{executeTools: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := uuid.NewString()
	ctx = telemetry.WithRunID(ctx, runID)
	log := r.log.WithField("run_id", runID)

	cv := cfg.contextVariables.Clone()
	history := message.NewHistory(msgs)
	initLen := history.Len()
	tracker := NewAgentTracker(agent)
	active := agent
	pinned, viewFrom := -1, 0

	response := func() *Response {
		return &Response{Messages: history.Since(initLen), Agent: active, ContextVariables: cv.Clone()}
	}
	fail := func(err error) (*Response, error) {
		resp := response()
		return resp, &RunError{Err: err, Response: resp}
	}

	for active != nil && (cfg.maxTurns <= 0 || history.Len()-initLen < cfg.maxTurns) {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		tracker.Update(active)
		alog := log.WithField("agent", active.Name)
		if tracker.ResetMessageOnSwitch() {
			if u := history.LastUser(); u >= 0 {
				pinned, viewFrom = u, history.Len()
				alog.WithField("slot", u).Debug("agent switched; resetting history to latest user message")
			}
		}

		if dropped := sanitizeHandoffs(history, r.handoffPrefix); len(dropped) > 0 {
			alog.WithField("call_ids", dropped).Debug("removed handoff calls from history")
		}
		view := requestView(history, pinned, viewFrom)
		alog.WithField("history", historyShape(view)).Debug("history before request")

		req, stats, err := BuildRequest(RequestParams{
			Tracker:          tracker,
			History:          view,
			ContextVariables: cv,
			ModelOverride:    cfg.modelOverride,
			Metadata:         cfg.metadata,
			TokenBudget:      r.tokenBudget,
		})
		turnID := uuid.NewString()
		tctx := telemetry.WithTurnID(ctx, turnID)
		if r.tokenBudget > 0 {
			telemetry.Emit("window_prepared", map[string]any{
				"turn_id":            turnID,
				"budget":             stats.Budget,
				"total_estimated":    stats.Total,
				"included_groups":    stats.IncludedGroups,
				"skipped_groups":     stats.SkippedGroups,
				"over_budget_newest": stats.OverBudgetNewest,
			})
		}
		if err != nil {
			alog.WithError(err).Error("building request")
			return fail(err)
		}

		comp, err := r.complete(tctx, active, req, alog.WithField("turn_id", turnID))
		if err != nil {
			return fail(err)
		}

		var calls []message.Message
		for _, out := range comp.Output {
			out.Sender = active.Name
			history.Append(out)
			if out.IsFunctionCall() {
				calls = append(calls, out)
			}
		}
		if len(calls) == 0 || !cfg.executeTools {
			alog.Info("ending turn")
			break
		}

		frag, err := r.handleToolCalls(tctx, calls, active, cv, alog.WithField("turn_id", turnID))
		history.Append(frag.messages...)
		cv = cv.Merge(frag.contextVariables)
		if err != nil {
			return fail(err)
		}
		if frag.agent != nil {
			tracker.AddTrackedToolName(frag.toolName)
			alog.WithFields(logrus.Fields{"tool": frag.toolName, "next_agent": frag.agent.Name}).Info("handoff")
			telemetry.Emit("handoff", map[string]any{
				"turn_id": turnID,
				"from":    active.Name,
				"to":      frag.agent.Name,
				"tool":    frag.toolName,
			})
			active = frag.agent
		}
	}
	return response(), nil
}

// complete sends one request and records it.
func (r *Runner) complete(ctx context.Context, agent *Agent, req *Request, log logrus.FieldLogger) (*Completion, error) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	ctx, span := telemetry.StartSpan(ctx, "swarm.turn",
		attribute.String("agent.name", agent.Name),
		attribute.String("model", req.Model),
		attribute.Int("input.items", len(req.Input)),
		attribute.Int("tools", len(req.Tools)),
	)
	telemetry.EmitRequestFeatures(ctx, agent.Name, req.Input)
	telemetry.Emit("completion_request", map[string]any{
		"turn_id": turnID,
		"agent":   agent.Name,
		"model":   req.Model,
		"items":   len(req.Input),
		"tools":   len(req.Tools),
	})
	telemetry.PersistPayload(turnID, "request", req)
	log.WithField("model", req.Model).Info("getting chat completion")

	comp, err := r.client.Create(ctx, req)
	if err == nil && comp == nil {
		err = errors.New("swarm: completion client returned no response")
	}
	telemetry.EndSpan(span, err)
	if err != nil {
		logUpstreamError(log, err)
		return nil, err
	}
	telemetry.PersistPayload(turnID, "response", comp)
	telemetry.Emit("completion_response", map[string]any{
		"turn_id": turnID,
		"id":      comp.ID,
		"items":   len(comp.Output),
	})
	return comp, nil
}

// logUpstreamError logs err together with the service's error body when the
// error exposes one.
func logUpstreamError(log logrus.FieldLogger, err error) {
	entry := log.WithError(err)
	var apiErr interface{ RawJSON() string }
	if errors.As(err, &apiErr) {
		if raw := apiErr.RawJSON(); raw != "" {
			entry = entry.WithField("payload", raw)
			if msg := gjson.Get(raw, "error.message"); msg.Exists() {
				entry = entry.WithField("upstream_message", msg.String())
			} else if msg := gjson.Get(raw, "message"); msg.Exists() {
				entry = entry.WithField("upstream_message", msg.String())
			}
		}
	}
	entry.Error("completion request failed")
}
