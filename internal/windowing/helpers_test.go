package windowing_test

import (
	"github.com/petasbytes/go-swarm/internal/windowing"
	"github.com/petasbytes/go-swarm/message"
)

// User message constructor
func U(text string) message.Message { return message.User(text) }

// Assistant text constructor
func A(text string) message.Message { return message.AssistantText(text) }

// Function call with a one-rune name and no arguments - cost 1 + overhead.
func FC(callID string) message.Message { return message.FunctionCall(callID, "f", "") }

// Function call output constructor
func FO(callID, out string) message.Message { return message.FunctionCallOutput(callID, out) }

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
