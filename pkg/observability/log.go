package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// RegisterAll installs h as pipeline, cache and HTTP hooks.
func (h *LogHooks) RegisterAll() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnRenderStart(_ context.Context, events int, groupBy string) {
	h.Logger.Debug("render start", "events", events, "group_by", groupBy)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, bars int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "duration", d, "err", err)
		return
	}
	h.Logger.Debug("render complete", "bars", bars, "duration", d)
}

func (h *LogHooks) OnComposeStart(_ context.Context, format string) {
	h.Logger.Debug("compose start", "format", format)
}

func (h *LogHooks) OnComposeComplete(_ context.Context, format string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("compose failed", "format", format, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("compose complete", "format", format, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
