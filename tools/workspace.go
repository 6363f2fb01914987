package tools

import "github.com/petasbytes/go-swarm/internal/safety"

// Workspace maps a model-supplied relative path to an absolute path the file
// tools may read, or rejects it.
type Workspace interface {
	Resolve(rel string) (string, error)
}

// NewWorkspace returns a Workspace confined to dir (the working directory
// when empty). It rejects absolute paths, traversal and symlink escapes, and
// reads under .git/ and .agent/.
func NewWorkspace(dir string) (Workspace, error) {
	r, err := safety.NewRoot(dir)
	if err != nil {
		return nil, err
	}
	return r, nil
}
