package swarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/petasbytes/go-swarm/internal/telemetry"
	"github.com/petasbytes/go-swarm/message"
)

const transferredValue = "successfully transferred"

// Result is the normalized outcome of a tool call. A non-nil Agent requests a
// handoff; ContextVariables are merged into the running context.
type Result struct {
	Value            string
	Agent            *Agent
	ContextVariables ContextVariables
}

// fragment is the tool activity of a single turn.
type fragment struct {
	messages         []message.Message
	agent            *Agent
	toolName         string // tool whose result carried agent
	contextVariables ContextVariables
}

// handleToolCalls runs calls in model order against agent's functions. Each
// call sees the context variables merged by the calls before it.
func (r *Runner) handleToolCalls(ctx context.Context, calls []message.Message, agent *Agent, cv ContextVariables, log logrus.FieldLogger) (fragment, error) {
	functions := make(map[string]*Function, len(agent.Functions))
	for _, t := range agent.Functions {
		if fn := invocable(t); fn != nil {
			functions[fn.Name] = fn
		}
	}

	frag := fragment{contextVariables: ContextVariables{}}
	working := cv.Clone()
	handoffs := 0
	for _, call := range calls {
		clog := log.WithFields(logrus.Fields{"tool": call.Name, "call_id": call.CallID})
		fn, ok := functions[call.Name]
		if !ok {
			clog.Error("tool not found in function map")
			frag.messages = append(frag.messages, message.FunctionCallOutput(call.CallID, "Error: Tool "+call.Name+" not found."))
			continue
		}

		res, err := r.invoke(ctx, fn, call, working, clog)
		if err != nil {
			return frag, err
		}

		frag.messages = append(frag.messages, message.FunctionCallOutput(call.CallID, res.Value))
		frag.contextVariables = frag.contextVariables.Merge(res.ContextVariables)
		working = working.Merge(res.ContextVariables)
		if res.Agent != nil {
			handoffs++
			if handoffs > 1 {
				clog.WithFields(logrus.Fields{"previous": frag.agent.Name, "next": res.Agent.Name}).
					Warn("multiple handoffs in one turn; the last one wins")
			}
			frag.agent = res.Agent
			frag.toolName = call.Name
		}
	}
	return frag, nil
}

// invoke runs one call. Tool errors become an error output; argument and
// result contract violations are returned.
func (r *Runner) invoke(ctx context.Context, fn *Function, call message.Message, cv ContextVariables, log logrus.FieldLogger) (Result, error) {
	args := strings.TrimSpace(call.Arguments)
	if args == "" {
		args = "{}"
	}
	if !gjson.Valid(args) || !gjson.Parse(args).IsObject() {
		return Result{}, fmt.Errorf("%w: %s: not a JSON object", ErrMalformedArguments, call.Name)
	}

	ctx, span := telemetry.StartSpan(ctx, "swarm.tool",
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.CallID),
	)
	log.WithField("arguments", args).Info("processing tool call")
	start := time.Now()
	raw, err := fn.call(ctx, []byte(args), cv)
	telemetry.EndSpan(span, err)

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	event := map[string]any{
		"turn_id":     turnID,
		"tool_name":   call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  len(args),
		"error":       nil,
	}
	defer func() { telemetry.Emit("tool_exec", event) }()

	if err != nil {
		event["error"] = err.Error()
		if errors.Is(err, ErrMalformedArguments) {
			return Result{}, err
		}
		log.WithError(err).Warn("tool returned an error")
		return Result{Value: "Error: " + err.Error()}, nil
	}

	res, err := normalizeResult(raw)
	if err != nil {
		event["error"] = err.Error()
		return Result{}, fmt.Errorf("tool %s: %w", call.Name, err)
	}
	event["output_size"] = len(res.Value)
	return res, nil
}

// normalizeResult turns a tool's return value into a Result. A panic raised
// while rendering the value (String, Error, MarshalJSON) is a coercion failure.
func normalizeResult(v any) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = Result{}, fmt.Errorf("%w: %T: %v", ErrResultCoercion, v, p)
		}
	}()
	switch t := v.(type) {
	case Result:
		return t, nil
	case *Result:
		if t == nil {
			return Result{}, nil
		}
		return *t, nil
	case *Agent:
		if t == nil {
			return Result{}, nil
		}
		return Result{Value: transferredValue, Agent: t}, nil
	case nil:
		return Result{}, nil
	case string:
		return Result{Value: t}, nil
	case []byte:
		return Result{Value: string(t)}, nil
	case error:
		return Result{Value: t.Error()}, nil
	case fmt.Stringer:
		return Result{Value: t.String()}, nil
	case bool:
		return Result{Value: strconv.FormatBool(t)}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Result{Value: fmt.Sprint(t)}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %T: %v", ErrResultCoercion, v, err)
	}
	return Result{Value: string(b)}, nil
}
