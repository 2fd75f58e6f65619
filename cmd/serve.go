package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ministry-site/internal/auth"
	"ministry-site/internal/media"
	"ministry-site/internal/objstore"
	"ministry-site/internal/panel"
	"ministry-site/internal/playback"
	"ministry-site/internal/server"
	"ministry-site/internal/source"
	"ministry-site/internal/store"
	"ministry-site/internal/view"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the admin panel and the player socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, map[string]string{
				"http.addr":       "addr",
				"data.dir":        "data-dir",
				"public.base_url": "base-url",
			}); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address, e.g. :8180")
	cmd.Flags().String("data-dir", "", "directory for the database and uploads")
	cmd.Flags().String("base-url", "", "public origin used in upload URLs")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := a.cfg

	db, err := store.Open(ctx, cfg.Data.Dir)
	if err != nil {
		return err
	}
	defer db.Close()

	objects, err := objstore.Open(cfg.Data.Dir, objstore.Options{
		BaseURL:  cfg.Public.BaseURL,
		MaxBytes: cfg.Upload.MaxBytes,
	})
	if err != nil {
		return err
	}
	defer objects.Close()

	authn, err := auth.New(auth.Config{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Secret:   []byte(cfg.Admin.Secret),
		TTL:      cfg.Admin.SessionTTL,
	})
	if err != nil {
		return err
	}

	element := media.NewElement()
	player := view.New(playback.NewStore(element), element, view.Config{
		Limits:          panel.DefaultLimits(),
		Viewport:        panel.Viewport{Width: cfg.Player.ViewportWidth, Height: cfg.Player.ViewportHeight},
		EndedCloseDelay: cfg.Player.EndedCloseDelay,
		ErrorCloseDelay: cfg.Player.ErrorCloseDelay,
		FrameInterval:   cfg.Player.FrameInterval,
		Logger:          a.log,
	})
	defer player.Close()
	go player.Run(ctx)

	sources := source.NewRegistry(source.Storage{Objects: objects}, source.Remote{})
	handler := server.NewHandler(player, element, sources, a.log)
	api := server.NewAPI(server.Deps{
		DB:        db,
		Objects:   objects,
		Auth:      authn,
		Player:    player,
		Handler:   handler,
		Sources:   sources,
		Logger:    a.log,
		MaxUpload: cfg.Upload.MaxBytes,
	})
	hub := server.NewHub(player, handler, a.log)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.SetupRouter(api, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", cfg.HTTP.Addr, "base_url", cfg.Public.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		hub.Close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Upgraded sockets are hijacked, so Shutdown does not wait for them.
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}
