package telemetry

import (
	"os"
)

const defaultArtifactsDir = ".agent"

var (
	observeEnabled         bool
	persistPayloadsEnabled bool
)

func init() {
	// Read once at process start. Mid-run environment changes have no effect
	// beyond the explicit "1" overrides below.
	observeEnabled = os.Getenv("SWARM_OBSERVE_JSON") == "1"
	persistPayloadsEnabled = os.Getenv("SWARM_PERSIST_PAYLOADS") == "1"
}

// ObserveEnabled reports whether JSONL emission is enabled.
func ObserveEnabled() bool {
	// Preserve startup-evaluated default, but allow tests to enable mid-run via env override.
	if os.Getenv("SWARM_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled
}

// PersistPayloadsEnabled reports whether request and response payload persistence is enabled.
func PersistPayloadsEnabled() bool {
	if os.Getenv("SWARM_PERSIST_PAYLOADS") == "1" {
		return true
	}
	return persistPayloadsEnabled
}

// ArtifactsDir is where events and payloads are written. SWARM_ARTIFACTS_DIR
// overrides the default .agent directory.
func ArtifactsDir() string {
	if dir := os.Getenv("SWARM_ARTIFACTS_DIR"); dir != "" {
		return dir
	}
	return defaultArtifactsDir
}
