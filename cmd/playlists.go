package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicapp/internal/formatter"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
)

// PlaylistExport writes a user's playlist as CSV, Markdown, text or JSON.
//
// With --output, csv writes {output}_songs.csv and {output}_metadata.json and md
// writes {output}/README.md; otherwise the export is printed.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	owner, err := repositories.NewUserRepository(a.db).GetByUsername(ctx, cmd.String("user"))
	if err != nil {
		return err
	}

	detail, err := a.playlists.Get(ctx, cmd.Int64("id"), owner)
	if err != nil {
		return err
	}

	export := &formatter.PlaylistExport{Playlist: *detail.Playlist, Songs: detail.Songs}
	format := cmd.String("format")
	output := cmd.String("output")

	switch {
	case output != "" && format == "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.logger.Info("exported playlist", "songs", result.SongsFile, "metadata", result.MetadataFile)
		return nil
	case output != "" && (format == "md" || format == "markdown"):
		path, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.logger.Info("exported playlist", "file", path)
		return nil
	case output != "":
		return fmt.Errorf("%w: --output is only supported for csv and md exports", shared.ErrInvalidArgument)
	}

	data, err := formatter.Export(export, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", data)
}
