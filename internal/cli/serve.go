package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/internal/config"
	"github.com/matzehuels/storyline/internal/server"
	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/io"
	"github.com/matzehuels/storyline/pkg/observability"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/session"
)

type serveOpts struct {
	listen   string
	config   string
	document string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the HTTP service.

Configuration is read from --config (YAML, TOML or JSON) and STORYLINE_*
environment variables; flags take precedence. With --document the session
starts out with that document's events and style.`,
		Example: `  storyline serve
  storyline serve --listen :9000 --document day.toml
  STORYLINE_CACHE_ENABLED=false storyline serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = opts.listen
			}
			if cmd.Flags().Changed("document") {
				cfg.Document = opts.document
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "127.0.0.1:8080", "address to listen on")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file")
	cmd.Flags().StringVarP(&opts.document, "document", "d", "", "timeline document to preload")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	logger := loggerFromContext(ctx)
	observability.NewLogHooks(logger).RegisterAll()

	var store cache.Cache = cache.NewNullCache()
	if cfg.Cache.Enabled {
		store = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}
	runner := pipeline.NewRunner(store, nil, logger)
	runner.TTL = cfg.Cache.TTL

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
	}
	if cfg.Document != "" {
		sess, err := sessionFromDocument(cfg.Document)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithSession(sess))
		logger.Info("Loaded document", "path", cfg.Document, "events", len(sess.Events()))
	}

	srv := server.New(runner, opts...)

	printInfo("Listening on %s", StyleValue.Render("http://"+cfg.Listen))
	printDetail("Press Ctrl+C to stop")
	return srv.ListenAndServe(ctx, cfg.Listen, server.Timeouts{
		Read:     cfg.Server.ReadTimeout,
		Write:    cfg.Server.WriteTimeout,
		Shutdown: cfg.Server.ShutdownTimeout,
	})
}

// sessionFromDocument builds a never-expiring session holding the
// document's events, style, background, group-by and format.
func sessionFromDocument(path string) (*session.Session, error) {
	doc, err := io.Load(path)
	if err != nil {
		return nil, err
	}
	popts, err := doc.Options(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	sess := session.New(0)
	for _, e := range popts.Events {
		if _, err := sess.AddEvent(e); err != nil {
			return nil, err
		}
	}
	if _, err := sess.UpdateStyle(popts.Style.Settings()); err != nil {
		return nil, err
	}
	if popts.Style.BackgroundImage != nil {
		opacity := popts.Style.BackgroundImageOpacity
		if err := sess.SetBackground(popts.Style.BackgroundImage, &opacity); err != nil {
			return nil, err
		}
	}
	if err := sess.SetGroupBy(popts.GroupBy); err != nil {
		return nil, err
	}
	if err := sess.SetFormat(popts.Format); err != nil {
		return nil, err
	}
	return sess, nil
}
