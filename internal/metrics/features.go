// Package metrics derives cheap, deterministic size features from text and
// conversation items. Windowing and telemetry use them instead of a tokenizer.
package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/go-swarm/message"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// Add returns the element-wise sum of f and o.
func (f Features) Add(o Features) Features {
	return Features{
		Bytes: f.Bytes + o.Bytes,
		Runes: f.Runes + o.Runes,
		Words: f.Words + o.Words,
		Lines: f.Lines + o.Lines,
	}
}

// CountFeatures computes and returns byte, rune, word, and line counts for the input string.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: countLines(s),
	}
}

// MessageFeatures sums the features of every model-visible text field of m:
// message text, tool name and arguments, tool output and reasoning summary.
func MessageFeatures(m message.Message) Features {
	var f Features
	for _, s := range payloadText(m) {
		f = f.Add(CountFeatures(s))
	}
	return f
}

func payloadText(m message.Message) []string {
	switch m.Type {
	case message.TypeFunctionCall:
		return []string{m.Name, m.Arguments}
	case message.TypeFunctionCallOutput:
		return []string{m.Output}
	case message.TypeReasoning:
		out := make([]string, 0, len(m.Summary))
		for _, p := range m.Summary {
			out = append(out, p.Text)
		}
		return out
	default:
		return []string{m.Text()}
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
