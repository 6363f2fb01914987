package telemetry

import (
	"context"

	"github.com/petasbytes/go-swarm/internal/metrics"
	"github.com/petasbytes/go-swarm/message"
)

func featureFields(f metrics.Features) map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}

// EmitLocalFeatures records size features of a user prompt. The raw text is never written.
func EmitLocalFeatures(ctx context.Context, user string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"user":             featureFields(metrics.CountFeatures(user)),
	})
}

// EmitRequestFeatures records the item count and summed size features of
// the input sent for one turn.
func EmitRequestFeatures(ctx context.Context, agent string, input []message.Message) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	var total metrics.Features
	byType := make(map[string]int)
	for _, m := range input {
		total = total.Add(metrics.MessageFeatures(m))
		t := string(m.Type)
		if t == "" {
			t = string(message.TypeMessage)
		}
		byType[t]++
	}
	Emit("request_features", map[string]any{
		"turn_id":          turnID,
		"agent":            agent,
		"features_version": "1",
		"items":            len(input),
		"items_by_type":    byType,
		"input":            featureFields(total),
	})
}
