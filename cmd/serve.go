package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicapp/internal/server"
)

// Serve runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Config: r.config,
		Services: server.Services{
			Artists:   a.artists,
			Songs:     a.songs,
			Social:    a.social,
			Playlists: a.playlists,
			Users:     a.users,
		},
		Tokens: a.tokens,
		Logger: r.logger,
	})
	return srv.ListenAndServe(ctx)
}
