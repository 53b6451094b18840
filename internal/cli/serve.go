package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/internal/server"
	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/config"
)

const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr    string
	watch   bool
	noCache bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [tree]",
		Short: "Serve trees over HTTP",
		Long: `Serve trees over HTTP.

Trees are posted to /api/trees and driven with commands; frames, layouts
and exports are fetched per instance. An optional tree file is loaded at
startup, and with --watch it is reloaded whenever it changes on disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr == "" {
				opts.addr = cfg.Server.Addr
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			} else if opts.watch {
				return errors.New("--watch needs a tree file")
			}
			return c.runServe(cmd.Context(), cfg, path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the tree file when it changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the export cache")

	return cmd
}

// serveCache picks Redis when configured and the local file cache
// otherwise.
func serveCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Server.RedisURL == "" {
		return newCache(noCache)
	}
	return cache.NewRedisCache(ctx, cfg.Server.RedisURL, appName+":")
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, path string, opts serveOpts) error {
	engineOpts, err := c.engineOptions(cfg)
	if err != nil {
		return err
	}
	store, err := serveCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.Config{
		Addr:           opts.addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Viewport:       cfg.ViewportSize(),
		ExpandDepth:    cfg.Tree.ExpandDepth,
		Engine:         engineOpts,
		Cache:          store,
		ExportTTL:      time.Hour,
		Logger:         loggerFromContext(ctx),
	})

	if path != "" {
		id, err := srv.LoadFile(path)
		if err != nil {
			return err
		}
		printSuccess("Loaded %s", path)
		printKeyValue("Instance", id)
		if opts.watch {
			go func() {
				if err := srv.Watch(ctx, path, id); err != nil {
					c.Logger.Error("watch stopped", "error", err)
				}
			}()
		}
	}
	printKeyValue("Listening", "http://"+opts.addr)
	printNewline()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	printInfo("Server stopped")
	return nil
}
