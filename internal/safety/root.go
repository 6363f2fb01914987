// Package safety confines file access to a workspace root.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathError is a machine-readable error body returned to the model as JSON.
type PathError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e PathError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

const (
	CodeOutsideRoot = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead  = "ERR_DENIED_READ"
	CodeNotAFile    = "ERR_NOT_A_FILE"
)

// deniedDirs are never readable, even inside the root.
var deniedDirs = []string{".git", ".agent"}

// Root is an absolute, symlink-resolved workspace directory.
type Root struct {
	dir string
}

// NewRoot resolves dir (the working directory when empty) to an absolute path.
func NewRoot(dir string) (*Root, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("abs(%s): %w", dir, err)
	}
	// Non-existent roots keep the absolute form; later lookups fail on stat.
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return &Root{dir: abs}, nil
}

func (r *Root) Dir() string { return r.dir }

// Resolve maps rel to an absolute path inside the root. Absolute inputs,
// parent traversal, symlink escapes, and reads under denied directories are
// rejected with a PathError.
func (r *Root) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", PathError{Code: CodeOutsideRoot, Message: "absolute paths are not allowed"}
	}
	candidate := filepath.Join(r.dir, filepath.Clean(rel))

	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	inside, err := filepath.Rel(r.dir, candidate)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) || filepath.IsAbs(inside) {
		return "", PathError{Code: CodeOutsideRoot, Message: "requested path resolves outside the sandbox root"}
	}

	slash := filepath.ToSlash(inside)
	for _, d := range deniedDirs {
		if slash == d || strings.HasPrefix(slash, d+"/") {
			return "", PathError{Code: CodeDeniedRead, Message: fmt.Sprintf("reads under %s/ are not allowed", d)}
		}
	}
	return candidate, nil
}
