package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charmbracelet logger. The CLI registers it under --verbose.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnLayout(instance string, nodes int, d time.Duration) {
	h.Logger.Debug("layout", "engine", instance, "nodes", nodes, "duration", d)
}

func (h LogHooks) OnCommand(instance, command string, err error) {
	if err != nil {
		h.Logger.Warn("command failed", "engine", instance, "command", command, "error", err)
		return
	}
	h.Logger.Debug("command", "engine", instance, "command", command)
}

func (h LogHooks) OnExport(instance, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("export failed", "engine", instance, "format", format, "error", err)
		return
	}
	h.Logger.Debug("export", "engine", instance, "format", format, "bytes", size, "duration", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ EngineHooks = LogHooks{}
	_ CacheHooks  = LogHooks{}
	_ HTTPHooks   = LogHooks{}
)
