package swarm

import (
	"fmt"
	"strings"

	"github.com/petasbytes/go-swarm/message"
)

// DefaultHandoffPrefix marks the function calls that transfer control between
// agents.
const DefaultHandoffPrefix = "transfer_to_"

// sanitizeHandoffs tombstones every handoff call in h, the reasoning item right
// before it and its outputs, so stale transfers are not replayed to the model.
func sanitizeHandoffs(h *message.History, prefix string) []string {
	return h.DropToolCalls(func(m message.Message) bool {
		return strings.HasPrefix(m.Name, prefix)
	})
}

// requestView returns the live history sent to the model. After a reset the
// view is the pinned user message followed by everything from slot from on.
func requestView(h *message.History, pinned, from int) []message.Message {
	if pinned < 0 {
		return h.Compact()
	}
	view := make([]message.Message, 0, h.Len()-from+1)
	if m, live := h.At(pinned); live {
		view = append(view, m.Clone())
	}
	return append(view, h.Since(from)...)
}

// historyShape summarizes items as type/role/id for debug logs.
func historyShape(msgs []message.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		t := m.Type
		if t == "" {
			t = message.TypeMessage
		}
		out[i] = fmt.Sprintf("%s/%s/%s", t, m.Role, m.ID)
	}
	return out
}
