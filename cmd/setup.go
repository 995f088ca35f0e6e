package main

import (
	"context"
	"fmt"
	"os"

	"github.com/avagyan/streamboard/internal/repositories"
	"github.com/avagyan/streamboard/internal/shared"
	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the database, run migrations, and bootstrap the admin account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead of applying",
			},
		},
		Action: r.Setup,
	}
}

// Setup initializes the database and runs migrations. A missing config file
// is created from the embedded template first.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "err", err)
		}
	}

	config := r.loadConfig(cmd)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back most recent migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.logger.Info("rollback complete")
		return nil
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if config.Admin.Password != "" {
		created, err := repositories.NewUserRepository(db).EnsureAdmin(
			config.Admin.Username, config.Admin.Email, config.Admin.Password)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
		if created {
			r.logger.Info("created bootstrap admin account", "username", config.Admin.Username)
		}
	} else {
		r.logger.Warn("admin password not set, skipping admin bootstrap")
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
