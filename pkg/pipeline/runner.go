package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/observability"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP service use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete render → compose pipeline with caching.
//
// An empty event list fails with EMPTY_INPUT before any work is done.
// Panics during rendering or compositing are recovered as RENDER_FAILED.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Events) == 0 {
		return nil, errs.New(errs.ErrCodeEmptyInput, timeline.EmptyInputMessage)
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Filename: opts.Filename(),
		MIMEType: mockup.MIMEType,
		Stats:    Stats{Events: len(opts.Events)},
	}

	contentHash, err := opts.ContentHash()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "hash content")
	}
	cacheKey, keyType := r.cacheKey(contentHash, opts)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyType)
			opts.Logger.Debug("cache hit", "key", cacheKey)
			result.PNG = data
			result.CacheHit = true
			return result, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}

	// Stage 1: Render
	renderStart := time.Now()
	chart, img, err := r.RenderChart(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Chart = chart
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.Bars = len(chart.Bars)
	result.Stats.Categories = len(chart.Categories)

	opts.Logger.Info("rendered chart",
		"events", len(opts.Events),
		"categories", len(chart.Categories),
		"duration", result.Stats.RenderTime)

	// Stage 2: Compose
	composeStart := time.Now()
	data, err := r.Compose(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	result.PNG = data
	result.Stats.ComposeTime = time.Since(composeStart)

	opts.Logger.Info("composed mockup",
		"format", opts.Format,
		"chart_only", opts.ChartOnly,
		"bytes", len(data),
		"duration", result.Stats.ComposeTime)

	if err := r.Cache.Set(ctx, cacheKey, data, r.ttlFor(opts)); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}

	return result, nil
}

// RenderChart runs the render stage and reports it to the pipeline hooks.
func (r *Runner) RenderChart(ctx context.Context, opts Options) (*timeline.Chart, image.Image, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, len(opts.Events), string(opts.GroupBy))
	start := time.Now()

	var (
		chart *timeline.Chart
		img   image.Image
	)
	err := guard("render", func() error {
		var err error
		chart, img, err = RenderChart(opts)
		return err
	})

	bars := 0
	if chart != nil {
		bars = len(chart.Bars)
	}
	hooks.OnRenderComplete(ctx, bars, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return chart, img, nil
}

// Compose runs the compose stage and reports it to the pipeline hooks.
func (r *Runner) Compose(ctx context.Context, img image.Image, opts Options) ([]byte, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, opts.Format.Slug())
	start := time.Now()

	var data []byte
	err := guard("compose", func() error {
		var err error
		data, err = ComposePNG(img, opts)
		return err
	})

	hooks.OnComposeComplete(ctx, opts.Format.Slug(), time.Since(start), err)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheKey(contentHash string, opts Options) (key, keyType string) {
	if opts.ChartOnly {
		return r.Keyer.ChartKey(contentHash), "chart"
	}
	return r.Keyer.MockupKey(contentHash, opts.MockupKeyOpts()), "mockup"
}

func (r *Runner) ttlFor(opts Options) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	if opts.ChartOnly {
		return cache.TTLChart
	}
	return cache.TTLMockup
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
