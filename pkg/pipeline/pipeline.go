// Package pipeline provides the render pipeline for storyline.
//
// This package implements the complete events → chart → mockup pipeline used
// by the CLI and the HTTP service. Centralizing it keeps both entry points
// behaving the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Render: Aggregate the events into a [timeline.Chart] and rasterize it
//  2. Compose: Place the chart onto a social-media canvas and encode PNG
//
// The pipeline is synchronous and keeps no state between calls: a run is a
// pure function of [Options]. Callers that edit state (the HTTP session, a
// timeline document) build fresh Options for every run.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Events:  events,
//	    GroupBy: timeline.ByPlace,
//	    Format:  mockup.Story,
//	})
//	if errors.Is(err, errors.ErrCodeEmptyInput) {
//	    // nothing to draw
//	}
//	os.WriteFile(result.Filename, result.PNG, 0o644)
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/fonts"
	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and HTTP service
// =============================================================================

const (
	// DefaultGroupBy is the category dimension when none is given.
	DefaultGroupBy = timeline.ByTitle

	// DefaultFormat is the mockup format when none is given.
	DefaultFormat = mockup.Story

	// ChartFilename is the download name of a chart rendered without a mockup.
	ChartFilename = "timeline_chart.png"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Render options
	Events  []timeline.Event `json:"events"`
	GroupBy timeline.GroupBy `json:"group_by,omitempty"`
	Style   timeline.Style   `json:"-"`

	// Compose options
	Format       mockup.Format `json:"format,omitempty"`
	TargetWidth  int           `json:"target_width,omitempty"`
	TargetHeight int           `json:"target_height,omitempty"`
	ChartOnly    bool          `json:"chart_only,omitempty"` // Skip compositing and return the chart PNG
	Refresh      bool          `json:"refresh,omitempty"`    // Bypass cache reads

	// Runtime options (not serialized)
	Logger *log.Logger     `json:"-"`
	Fonts  *fonts.Resolver `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the rendered chart. It is nil when the PNG came from the cache.
	Chart *timeline.Chart

	// PNG is the encoded mockup, or the chart itself with ChartOnly.
	PNG []byte

	// Filename is the suggested download name.
	Filename string

	// MIMEType is the content type of PNG.
	MIMEType string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether PNG came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Events      int
	Bars        int
	Categories  int
	RenderTime  time.Duration
	ComposeTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
//
// An empty event list is not an error here; [Runner.Execute] reports it as
// EMPTY_INPUT before doing any work.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRender checks events, group-by and style.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if !o.GroupBy.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "unknown group-by %q (must be title or place)", o.GroupBy)
	}
	for i, e := range o.Events {
		if err := e.Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "event %d", i+1)
		}
	}
	return o.Style.Validate()
}

// SetRenderDefaults fills an unset group-by, style, font resolver and logger.
func (o *Options) SetRenderDefaults() {
	if o.GroupBy == "" {
		o.GroupBy = DefaultGroupBy
	}
	if o.Style.BarColor == nil && o.Style.Width == 0 && o.Style.Height == 0 {
		o.Style = timeline.DefaultStyle()
	}
	if o.Fonts == nil {
		o.Fonts = fonts.DefaultResolver()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForCompose checks the format and target size.
// The target size defaults to the chart size.
func (o *Options) ValidateForCompose() error {
	if o.Format == 0 {
		o.Format = DefaultFormat
	}
	if !o.Format.Valid() {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid mockup format %d", int(o.Format))
	}
	if o.TargetWidth == 0 {
		o.TargetWidth = o.Style.Width
	}
	if o.TargetHeight == 0 {
		o.TargetHeight = o.Style.Height
	}
	if o.TargetWidth < 0 || o.TargetHeight < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "target size must be positive, got %dx%d", o.TargetWidth, o.TargetHeight)
	}
	if o.TargetWidth > mockup.MaxTargetSize || o.TargetHeight > mockup.MaxTargetSize {
		return errs.New(errs.ErrCodeInvalidInput, "target size cannot exceed %dx%d, got %dx%d",
			mockup.MaxTargetSize, mockup.MaxTargetSize, o.TargetWidth, o.TargetHeight)
	}
	return nil
}

// Filename returns the download name of the run's output.
func (o *Options) Filename() string {
	if o.ChartOnly {
		return ChartFilename
	}
	return mockup.Filename(o.Format)
}

// MockupKeyOpts returns cache key options for compositing.
func (o *Options) MockupKeyOpts() cache.MockupKeyOpts {
	return cache.MockupKeyOpts{
		Format:       o.Format.Slug(),
		TargetWidth:  o.TargetWidth,
		TargetHeight: o.TargetHeight,
	}
}

// contentKey is everything that determines the rendered chart.
// Event IDs are excluded: they do not change the picture. Times keep their
// zone offset since tick labels show local wall-clock time.
type contentKey struct {
	Events     []eventKey             `json:"events"`
	GroupBy    timeline.GroupBy       `json:"group_by"`
	Style      timeline.StyleSettings `json:"style"`
	Background string                 `json:"background,omitempty"`
}

type eventKey struct {
	Title string    `json:"title"`
	Place string    `json:"place"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ContentHash returns the SHA-256 of the chart content.
func (o *Options) ContentHash() (string, error) {
	k := contentKey{
		Events:  make([]eventKey, len(o.Events)),
		GroupBy: o.GroupBy,
		Style:   o.Style.Settings(),
	}
	for i, e := range o.Events {
		k.Events[i] = eventKey{Title: e.Title, Place: e.Place, Start: e.Start, End: e.End}
	}
	if o.Style.BackgroundImage != nil {
		k.Background = imageHash(o.Style.BackgroundImage)
	}
	return cache.HashJSON(k)
}

// imageHash hashes the pixels of img in NRGBA form.
func imageHash(img image.Image) string {
	n := imaging.Clone(img)
	b := n.Bounds()
	header := []byte{
		byte(b.Dx() >> 24), byte(b.Dx() >> 16), byte(b.Dx() >> 8), byte(b.Dx()),
		byte(b.Dy() >> 24), byte(b.Dy() >> 16), byte(b.Dy() >> 8), byte(b.Dy()),
	}
	return cache.Hash(append(header, n.Pix...))
}
