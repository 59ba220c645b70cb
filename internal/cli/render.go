package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/io"
	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// renderOpts holds options for the render command.
type renderOpts struct {
	output       string
	format       string
	groupBy      string
	targetWidth  int
	targetHeight int
	chartOnly    bool
	noCache      bool
	refresh      bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a timeline document to an Instagram mockup PNG",
		Long: `Render a timeline document (TOML, YAML or JSON) to a PNG.

The chart is drawn with the document's style, resized to the target size
and centered on a canvas of the chosen mockup format. Use --chart-only to
write the bare chart instead.`,
		Example: `  storyline render day.toml
  storyline render day.toml --format square_post -o post.png
  storyline render day.yaml --group-by place --chart-only`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: suggested filename)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "mockup format: story, square_post, vertical_post, horizontal_post")
	cmd.Flags().StringVarP(&opts.groupBy, "group-by", "g", "", "axis dimension: title or place")
	cmd.Flags().IntVar(&opts.targetWidth, "width", 0, "chart width on the canvas (default: chart width)")
	cmd.Flags().IntVar(&opts.targetHeight, "height", 0, "chart height on the canvas (default: chart height)")
	cmd.Flags().BoolVar(&opts.chartOnly, "chart-only", false, "write the chart without the mockup canvas")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")
	registerFormatCompletion(cmd)
	registerGroupByCompletion(cmd)

	return cmd
}

// runRender renders the document at path and writes the PNG.
func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts, err := loadRenderOptions(path, opts)
	if err != nil {
		return err
	}
	popts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering timeline...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)

	if errs.Is(err, errs.ErrCodeEmptyInput) {
		spinner.Stop()
		printWarning("%s", timeline.EmptyInputMessage)
		printNextStep("Add one", "storyline events add "+quote(path))
		return nil
	}
	if err != nil {
		spinner.StopWithError(errs.UserMessage(err))
		return err
	}
	spinner.Stop()

	out := opts.output
	if out == "" {
		out = filepath.Join(filepath.Dir(path), result.Filename)
	}
	if err := os.WriteFile(out, result.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	prog.done("Render complete")

	printSuccess("Rendered %s", describeOutput(popts))
	printStats(result.Stats.Events, result.Stats.Categories, result.CacheHit)
	printFile(out)
	return nil
}

// loadRenderOptions loads the document and applies flag overrides.
func loadRenderOptions(path string, opts renderOpts) (pipeline.Options, error) {
	doc, err := io.Load(path)
	if err != nil {
		return pipeline.Options{}, err
	}
	popts, err := doc.Options(filepath.Dir(path))
	if err != nil {
		return pipeline.Options{}, err
	}

	if opts.format != "" {
		f, err := mockup.ParseFormat(opts.format)
		if err != nil {
			return pipeline.Options{}, err
		}
		popts.Format = f
	}
	if opts.groupBy != "" {
		g, err := timeline.ParseGroupBy(opts.groupBy)
		if err != nil {
			return pipeline.Options{}, err
		}
		popts.GroupBy = g
	}
	popts.TargetWidth = opts.targetWidth
	popts.TargetHeight = opts.targetHeight
	popts.ChartOnly = opts.chartOnly
	popts.Refresh = opts.refresh
	return popts, nil
}

func describeOutput(opts pipeline.Options) string {
	if opts.ChartOnly {
		return "timeline chart"
	}
	return opts.Format.DisplayName() + " mockup"
}
