package windowing

import (
	"github.com/petasbytes/go-swarm/internal/metrics"
	"github.com/petasbytes/go-swarm/message"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m message.Message) int
	CountGroup(g Group, all []message.Message) int
}

// HeuristicCounter is the default deterministic estimator: the rune count of
// every model-visible text field plus a fixed per-item overhead.
type HeuristicCounter struct{}

// Fixed per-item overhead for deterministic counts; changing this requires updating the guard test.
const itemOverhead = 4

func (HeuristicCounter) CountMessage(m message.Message) int {
	return metrics.MessageFeatures(m).Runes + itemOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []message.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
