package message

// History is an append-only arena of conversation slots. Slots can be
// tombstoned but are never removed, so indices and Len stay stable for the
// lifetime of a run; Compact and Since filter tombstones out.
type History struct {
	slots []slot
}

type slot struct {
	msg  Message
	dead bool
}

// NewHistory returns a history seeded with copies of msgs.
func NewHistory(msgs []Message) *History {
	h := &History{slots: make([]slot, 0, len(msgs))}
	h.Append(msgs...)
	return h
}

// Len counts every slot, tombstoned or not.
func (h *History) Len() int { return len(h.slots) }

// Live counts the slots that are not tombstoned.
func (h *History) Live() int {
	n := 0
	for _, s := range h.slots {
		if !s.dead {
			n++
		}
	}
	return n
}

// Append adds copies of msgs to the end of the arena.
func (h *History) Append(msgs ...Message) {
	for _, m := range msgs {
		h.slots = append(h.slots, slot{msg: m.Clone()})
	}
}

// At returns the message in slot i and whether that slot is live.
func (h *History) At(i int) (Message, bool) {
	if i < 0 || i >= len(h.slots) {
		return Message{}, false
	}
	s := h.slots[i]
	return s.msg, !s.dead
}

// Tombstone marks slot i as deleted. Out-of-range indices are ignored.
func (h *History) Tombstone(i int) {
	if i >= 0 && i < len(h.slots) {
		h.slots[i].dead = true
	}
}

// Compact returns the live messages in order.
func (h *History) Compact() []Message { return h.Since(0) }

// Since returns the live messages stored at slot n and after.
func (h *History) Since(n int) []Message {
	if n < 0 {
		n = 0
	}
	out := make([]Message, 0, max(len(h.slots)-n, 0))
	for i := n; i < len(h.slots); i++ {
		if !h.slots[i].dead {
			out = append(out, h.slots[i].msg.Clone())
		}
	}
	return out
}

// LastUser returns the slot index of the most recent live user-authored
// message, or -1.
func (h *History) LastUser() int {
	for i := len(h.slots) - 1; i >= 0; i-- {
		if !h.slots[i].dead && h.slots[i].msg.IsUser() {
			return i
		}
	}
	return -1
}

// DropToolCalls tombstones every live function_call for which match returns
// true, the live reasoning item immediately preceding it, and every
// function_call_output answering one of those calls. It returns the dropped
// call IDs in history order.
func (h *History) DropToolCalls(match func(Message) bool) []string {
	var callIDs []string
	dropped := make(map[string]struct{})
	for i, s := range h.slots {
		if s.dead || !s.msg.IsFunctionCall() || !match(s.msg) {
			continue
		}
		h.slots[i].dead = true
		if _, seen := dropped[s.msg.CallID]; !seen {
			dropped[s.msg.CallID] = struct{}{}
			callIDs = append(callIDs, s.msg.CallID)
		}
		if i > 0 && !h.slots[i-1].dead && h.slots[i-1].msg.IsReasoning() {
			h.slots[i-1].dead = true
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	for i, s := range h.slots {
		if s.dead || !s.msg.IsFunctionCallOutput() {
			continue
		}
		if _, ok := dropped[s.msg.CallID]; ok {
			h.slots[i].dead = true
		}
	}
	return callIDs
}
