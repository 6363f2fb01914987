package tools

import (
	"context"
	"os"
	"strings"

	"github.com/petasbytes/go-swarm/internal/safety"
	"github.com/petasbytes/go-swarm/swarm"
)

type ReadFileInput struct {
	Path   string `json:"path" jsonschema_description:"Relative file path."`
	Offset int    `json:"offset,omitempty" jsonschema_description:"Line offset (0-based) to start reading from."`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum lines to return from offset (default 200)."`
}

const (
	defaultReadFileLimit = 200
	truncationSentinel   = "-- truncated; use offset/limit to fetch more --\n"
	maxLineRunes         = 2000
	overallRuneCap       = 12_000
)

// ReadFileTool returns the read_file function bound to ws.
func ReadFileTool(ws Workspace) *swarm.Function {
	return swarm.NewFunction("read_file",
		"Read the contents of a file addressed by a relative file path within the workspace. Directory paths and unsafe paths are rejected.",
		func(_ context.Context, in ReadFileInput) (any, error) {
			return ReadFile(ws, in)
		})
}

// ReadFile returns a window of lines from a file in ws. Lines longer
// than maxLineRunes and output beyond overallRuneCap are cut, and a trailing
// sentinel marks any truncation.
func ReadFile(ws Workspace, in ReadFileInput) (string, error) {
	abs, err := ws.Resolve(in.Path)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.PathError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultReadFileLimit
	}
	offset := max(in.Offset, 0)

	lines := strings.Split(string(b), "\n")
	offset = min(offset, len(lines))
	end := min(offset+limit, len(lines))

	truncated := end < len(lines)
	for i := offset; i < end; i++ {
		if clamped, did := clampRunes(lines[i], maxLineRunes); did {
			lines[i] = clamped
			truncated = true
		}
	}

	out := strings.Join(lines[offset:end], "\n")
	if clamped, did := clampRunes(out, overallRuneCap); did {
		out = clamped
		truncated = true
	}

	if truncated {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += truncationSentinel
	}
	return out, nil
}

func clampRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}
