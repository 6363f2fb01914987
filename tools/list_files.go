package tools

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/petasbytes/go-swarm/swarm"
)

type ListFilesInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Optional relative path to list files from (defaults to the workspace root)."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Page size (default 200)."`
}

const defaultListFilesPageSize = 200

func ListFilesTool(ws Workspace) *swarm.Function {
	return swarm.NewFunction("list_files",
		"List names of files in a directory within the workspace (non-recursive). Directories end with a slash.",
		func(_ context.Context, in ListFilesInput) (any, error) {
			return ListFiles(ws, in)
		})
}

// ListFiles returns one sorted page of directory entries as a JSON array.
// An out-of-range page yields "[]".
func ListFiles(ws Workspace, in ListFilesInput) (string, error) {
	page := max(in.Page, 1)
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = defaultListFilesPageSize
	}

	dir := in.Path
	if dir == "" {
		dir = "."
	}
	abs, err := ws.Resolve(dir)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	start := (page - 1) * pageSize
	if start >= len(names) {
		return "[]", nil
	}
	end := min(start+pageSize, len(names))

	b, err := json.Marshal(names[start:end])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
