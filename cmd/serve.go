package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avagyan/streamboard/internal/repositories"
	"github.com/avagyan/streamboard/internal/server"
	"github.com/avagyan/streamboard/internal/services"
	"github.com/avagyan/streamboard/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port, overriding the configured value",
			},
		},
		Action: r.Serve,
	}
}

// Serve wires the application together and runs the HTTP server until
// interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if err := config.Validate(); err != nil {
		return err
	}

	location, err := config.Server.Location()
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	users := repositories.NewUserRepository(db)
	created, err := users.EnsureAdmin(config.Admin.Username, config.Admin.Email, config.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	if created {
		r.logger.Info("created bootstrap admin account", "username", config.Admin.Username)
	}

	spotify, err := services.NewSpotifyService(config.Spotify, r.httpClient)
	if err != nil {
		return err
	}
	if err := spotify.AuthenticateApp(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with spotify: %w", err)
	}

	app, err := server.NewApp(server.AppOpts{
		Users:    users,
		Spotify:  spotify,
		Sessions: server.NewSessionManager(config.Session.Secret),
		Logger:   r.logger,
		Location: location,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
