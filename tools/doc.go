// Package tools provides ready-made swarm functions.
//
// Includes:
//   - Transfer: handoff functions named transfer_to_<agent>.
//   - Workspace file tools: read_file, list_files (non-recursive), confined
//     to a Workspace.
//   - remember: stores a fact in an agent's memory.
package tools
