// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand creates the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing and run database migrations",
		Action: r.Setup,
	}
}

// serveCommand starts the HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the web server",
		Action: r.Serve,
	}
}

// userCommand handles account administration.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (at least 6 characters)", Required: true},
					&cli.BoolFlag{Name: "admin", Usage: "Grant the admin role"},
					&cli.BoolFlag{Name: "manager", Usage: "Grant the manager role"},
				},
				Action: r.UserCreate,
			},
			{
				Name:  "reset-token",
				Usage: "Print a password reset link for a user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Action: r.UserResetToken,
			},
		},
	}
}

// artistCommand handles the artist directory.
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Browse artists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one page of artists",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ArtistList,
			},
			{
				Name:  "show",
				Usage: "Show an artist with songs and like totals",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ArtistShow,
			},
		},
	}
}

// playlistCommand exports playlists.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Export a user's playlist",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Username of the playlist owner", Required: true},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, md, txt or json", Value: "txt"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path (csv: base filename, md: directory); prints to stdout when empty"},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// dbCommand handles schema migrations.
func dbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database migrations",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Action: r.DBStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.DBRollback,
			},
		},
	}
}
