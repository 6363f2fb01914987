package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/petasbytes/go-swarm/swarm"
)

// Transfer returns a handoff function named transfer_to_<snake name> that
// switches the conversation to target.
func Transfer(target *swarm.Agent) *swarm.Function {
	return TransferWithPrefix(swarm.DefaultHandoffPrefix, target)
}

// TransferWithPrefix is Transfer for runners configured with a custom
// handoff prefix.
func TransferWithPrefix(prefix string, target *swarm.Agent) *swarm.Function {
	return swarm.NewAction(prefix+SnakeCase(target.Name),
		fmt.Sprintf("Transfer the conversation to the %s agent.", target.Name),
		func(context.Context) (any, error) { return target, nil })
}

// SnakeCase lowercases s and joins its words with underscores.
// "Files Agent", "files-agent" and "FilesAgent" all become "files_agent".
func SnakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if b.Len() > 0 && (pendingSep || (unicode.IsUpper(r) && prevLower)) {
				b.WriteByte('_')
			}
			pendingSep = false
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
			prevLower = false
		}
	}
	return b.String()
}
