// Package telemetry writes local JSONL events and request/response payloads
// for offline inspection, and opens tracing spans through the global
// OpenTelemetry provider.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type loggerRef struct{ l logrus.FieldLogger }

var current atomic.Pointer[loggerRef]

// SetLogger replaces the logger used to report write failures. Nil is
// ignored. Safe to call while events are being written.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		current.Store(&loggerRef{l: l})
	}
}

func logger() logrus.FieldLogger {
	if r := current.Load(); r != nil {
		return r.l
	}
	return logrus.StandardLogger()
}

// Emit writes a single JSON line to <artifacts>/events.jsonl when SWARM_OBSERVE_JSON=1.
// It augments fields with RFC3339Nano time and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		logger().WithError(err).WithField("event", name).Warn("telemetry: marshal")
		return
	}

	dir := ArtifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger().WithError(err).WithField("dir", dir).Warn("telemetry: mkdir")
		return
	}

	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger().WithError(err).WithField("path", path).Warn("telemetry: open")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		logger().WithError(err).WithField("path", path).Warn("telemetry: write")
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PersistPayload writes v as indented JSON to
// <artifacts>/payloads/<turnID>.<kind>.json when SWARM_PERSIST_PAYLOADS=1.
// It returns the written path, or "" when nothing was written.
func PersistPayload(turnID, kind string, v any) string {
	if !PersistPayloadsEnabled() {
		return ""
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger().WithError(err).WithField("kind", kind).Warn("telemetry: marshal payload")
		return ""
	}
	dir := filepath.Join(ArtifactsDir(), "payloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger().WithError(err).WithField("dir", dir).Warn("telemetry: mkdir")
		return ""
	}
	name := unsafeName.ReplaceAllString(turnID, "_") + "." + unsafeName.ReplaceAllString(kind, "_") + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		logger().WithError(err).WithField("path", path).Warn("telemetry: write payload")
		return ""
	}
	return path
}
