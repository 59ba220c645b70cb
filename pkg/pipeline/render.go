package pipeline

import (
	"bytes"
	"fmt"
	"image"

	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// RenderChart aggregates the events into a chart and rasterizes it.
func RenderChart(opts Options) (*timeline.Chart, image.Image, error) {
	chart, err := timeline.Render(opts.Events, opts.GroupBy, opts.Style, timeline.WithFonts(opts.Fonts))
	if err != nil {
		return nil, nil, err
	}
	img, err := chart.Rasterize()
	if err != nil {
		return nil, nil, err
	}
	return chart, img, nil
}

// ComposePNG places img onto the canvas of opts.Format and encodes it.
// With ChartOnly the image is encoded as is.
func ComposePNG(img image.Image, opts Options) ([]byte, error) {
	out := img
	if !opts.ChartOnly {
		composed, err := mockup.ComposeImage(img, opts.Format, opts.TargetWidth, opts.TargetHeight)
		if err != nil {
			return nil, err
		}
		out = composed
	}
	var buf bytes.Buffer
	if err := mockup.EncodePNG(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// guard converts a panic in fn into RENDER_FAILED.
func guard(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Wrap(errs.ErrCodeRenderFailed, fmt.Errorf("%v", r), "%s panicked", stage)
		}
	}()
	return fn()
}
