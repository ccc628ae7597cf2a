// package formatter exports playlists to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

// PlaylistExport is a playlist together with its songs.
type PlaylistExport struct {
	Playlist models.Playlist `json:"playlist"`
	Songs    []*models.Song  `json:"songs"`
}

// Formats lists the accepted values for [Export].
var Formats = []string{"csv", "md", "txt", "json"}

// Export renders the playlist in the named format.
func Export(export *PlaylistExport, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(export)
	case "md", "markdown":
		return ExportToMarkdown(export)
	case "txt", "text":
		return ExportToText(export)
	case "json":
		return json.MarshalIndent(export, "", "  ")
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist, Album, Uploaded
func ExportToCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Uploaded"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			strconv.FormatInt(song.ID, 10),
			song.Title,
			song.Artist,
			song.Album,
			song.UploadedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown with one numbered line per song
func ExportToMarkdown(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Name)
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(export.Songs))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		albumPart := ""
		if song.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, song.Artist, song.Title, albumPart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Songs))

	for i, song := range export.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist, song.Title)
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without songs)
func ToMetadataJSON(export *PlaylistExport) ([]byte, error) {
	return json.MarshalIndent(map[string]any{
		"id":         export.Playlist.ID,
		"name":       export.Playlist.Name,
		"user_id":    export.Playlist.UserID,
		"song_count": len(export.Songs),
	}, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist_{id} as the base filename & creates {base}_songs.csv and {base}_metadata.json
func WriteCSVExport(export *PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(export)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{SongsFile: songsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport writes {dir}/README.md for the playlist and returns its path.
//
// Directory name defaults to playlist_{id}.
func WriteMarkdownExport(export *PlaylistExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = defaultBase(export)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate markdown: %w", err)
	}

	path := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write markdown file: %w", err)
	}
	return path, nil
}

func defaultBase(export *PlaylistExport) string {
	return fmt.Sprintf("playlist_%d", export.Playlist.ID)
}
