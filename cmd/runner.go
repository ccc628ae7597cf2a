package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicapp/internal/auth"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/services"
	"github.com/desertthunder/musicapp/internal/shared"
	"github.com/desertthunder/musicapp/internal/storage"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, userCommand, artistCommand, playlistCommand, dbCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the --config file when it exists, then overlays the environment.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := shared.ApplyEnv(r.config); err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Server.LogLevel))
	return ctx, nil
}

// app is the set of services the commands run against.
type app struct {
	db        *sql.DB
	stores    *storage.Stores
	tokens    *auth.TokenIssuer
	users     *services.UserService
	artists   *services.ArtistService
	songs     *services.SongService
	social    *services.SocialService
	playlists *services.PlaylistService
}

func (a *app) Close() error {
	return a.db.Close()
}

// openDatabase opens and migrates the configured database.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// open wires the database, storage and services from the loaded config.
func (r *Runner) open(ctx context.Context) (*app, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	db, err := r.openDatabase()
	if err != nil {
		return nil, err
	}

	stores, err := storage.Open(ctx, r.config.Storage)
	if err != nil {
		db.Close()
		return nil, err
	}

	tokens := auth.NewTokenIssuer(r.config.Auth.SecretKey, repositories.NewUserRepository(db), nil)
	artists := services.NewArtistService(db, stores.Images, r.logger)

	return &app{
		db:        db,
		stores:    stores,
		tokens:    tokens,
		users:     services.NewUserService(db, tokens, r.config.Auth.ResetTokenTTL(), r.logger),
		artists:   artists,
		songs:     services.NewSongService(db, stores.Songs, artists, r.logger),
		social:    services.NewSocialService(db, r.logger),
		playlists: services.NewPlaylistService(db, r.logger),
	}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
