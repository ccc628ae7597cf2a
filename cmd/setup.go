package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicapp/internal/shared"
)

// Setup creates the config file from the template when missing, then initializes the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return err
		}
		if err := shared.ApplyEnv(config); err != nil {
			return err
		}
		r.config = config
		r.logger.Info("config file created", "path", r.configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, dir := range []string{r.config.Storage.ImageFolder, r.config.Storage.SongFolder} {
		if r.config.Storage.Provider != "local" || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// DBStatus prints each migration and whether it has been applied.
func (r *Runner) DBStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	status, err := shared.Migrations(db)
	if err != nil {
		return err
	}

	for _, m := range status {
		state := "pending"
		if m.Applied {
			state = "applied"
		}
		if err := r.writePlain("%04d %-24s %s\n", m.Version, m.Name, state); err != nil {
			return err
		}
	}
	return nil
}

// DBRollback rolls back the most recent migration.
func (r *Runner) DBRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration", "database", r.config.Database.Path)
	return nil
}
