package windowing

import "github.com/petasbytes/go-swarm/message"

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupExchange
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated tool exchange.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that never separate a tool
// call from its output.
// Invariants:
//   - An exchange is a run of reasoning/function_call items holding at least one
//     call, immediately followed by a run of function_call_output items.
//   - Completeness: every call ID in the call run has an output in the output run.
//   - Strictness: the output run answers no call outside the call run.
//
// Anything else falls back to singletons.
func GroupBlocks(msgs []message.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if end, ok := exchangeEnd(msgs, i); ok {
			groups = append(groups, Group{Kind: GroupExchange, Start: i, End: end})
			i = end
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// exchangeEnd reports the exclusive end of a valid exchange starting at i.
func exchangeEnd(msgs []message.Message, i int) (int, bool) {
	callIDs := make(map[string]struct{})
	j := i
	for j < len(msgs) && (msgs[j].IsFunctionCall() || msgs[j].IsReasoning()) {
		if msgs[j].IsFunctionCall() {
			callIDs[msgs[j].CallID] = struct{}{}
		}
		j++
	}
	if len(callIDs) == 0 {
		return 0, false
	}
	resultIDs := make(map[string]struct{})
	k := j
	for k < len(msgs) && msgs[k].IsFunctionCallOutput() {
		resultIDs[msgs[k].CallID] = struct{}{}
		k++
	}
	if k == j || !coversAll(resultIDs, callIDs) || !noExtraResults(resultIDs, callIDs) {
		return 0, false
	}
	return k, true
}

// coversAll checks that every id in required is present in have.
func coversAll(have, required map[string]struct{}) bool {
	for id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

// noExtraResults rejects outputs that answer no call of the exchange.
func noExtraResults(have, allowed map[string]struct{}) bool {
	for id := range have {
		if _, ok := allowed[id]; !ok {
			return false
		}
	}
	return true
}
