package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicapp/internal/shared"
	"github.com/desertthunder/musicapp/internal/ui"
)

// ArtistList prints one page of artists as a table.
func (r *Runner) ArtistList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.artists.ListArtists(ctx, int(cmd.Int("page")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, artist := range page.Items {
		born := ""
		if artist.BirthDate != nil {
			born = artist.BirthDate.Format("2006-01-02")
		}
		rows = append(rows, []string{strconv.FormatInt(artist.ID, 10), artist.Name, born, artist.ImageOrDefault()})
	}

	if err := r.writePlain("%s\n", ui.Styles.Title(fmt.Sprintf("Artists, page %d of %d", page.Page, max(page.Pages, 1)))); err != nil {
		return err
	}
	if len(rows) == 0 {
		return r.writePlain("%s\n", ui.Styles.Warn("no artists on this page"))
	}
	return r.writePlain("%s\n", ui.Styles.Table([]string{"ID", "Name", "Born", "Image"}, rows))
}

// ArtistShow prints an artist with its songs and total likes.
func (r *Runner) ArtistShow(ctx context.Context, cmd *cli.Command) error {
	id, err := strconv.ParseInt(cmd.StringArg("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: artist id must be a number", shared.ErrInvalidArgument)
	}

	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := a.artists.GetArtistDetail(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	if err := r.writePlain("%s\n", ui.Styles.Title(detail.Artist.Name)); err != nil {
		return err
	}
	if err := r.writePlain("Image: %s\nSongs: %d\nLikes: %d\n", detail.ImageURL, detail.NumSongs, detail.TotalLikes); err != nil {
		return err
	}
	if len(detail.Songs) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(detail.Songs))
	for _, song := range detail.Songs {
		rows = append(rows, []string{strconv.FormatInt(song.ID, 10), song.Title, song.Album})
	}
	return r.writePlain("%s\n", ui.Styles.Table([]string{"ID", "Title", "Album"}, rows))
}
