package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/songinfo/internal/resolver"
)

// Song is one artist/title pair to resolve.
type Song struct {
	Artist string
	Title  string
}

// Outcome is the per-song result printed by the CLI.
type Outcome struct {
	Artist  string  `json:"artist"`
	Song    string  `json:"song"`
	BPM     *int    `json:"bpm"`
	Key     *string `json:"key"`
	Genre   *string `json:"genre"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
}

type Resolver interface {
	Resolve(ctx context.Context, artist, title string) (*resolver.Result, error)
}

// ReadCSV loads songs from a CSV file with artist,title rows. A leading
// header row is skipped.
func ReadCSV(ctx context.Context, filePath string) ([]Song, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	songs, err := parseSongs(file)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("no songs found in CSV file")
	}
	return songs, nil
}

func parseSongs(r io.Reader) ([]Song, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var songs []Song
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected artist,title, got %d fields", line, len(record))
		}

		song := Song{
			Artist: strings.TrimSpace(record[0]),
			Title:  strings.TrimSpace(record[1]),
		}
		if song.Artist == "" || song.Title == "" {
			slog.Warn("Skipping incomplete CSV row", "line", line)
			continue
		}
		songs = append(songs, song)
	}

	return songs, nil
}

func isHeader(record []string) bool {
	return len(record) >= 2 &&
		strings.EqualFold(strings.TrimSpace(record[0]), "artist") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "title")
}

// Run resolves songs one after another, advancing bar after each. A failed
// lookup is recorded in its Outcome and does not stop the batch.
func Run(ctx context.Context, r Resolver, songs []Song, bar *progressbar.ProgressBar) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(songs))

	for _, song := range songs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome := Outcome{
			Artist: song.Artist,
			Song:   song.Title,
		}

		res, err := r.Resolve(ctx, song.Artist, song.Title)
		if err != nil {
			slog.Error("Failed to resolve song", "artist", song.Artist, "title", song.Title, "error", err)
			outcome.Error = err.Error()
		} else {
			outcome.BPM = res.Metadata.BPM
			outcome.Key = res.Metadata.Key
			outcome.Genre = res.Metadata.Genre
			outcome.Success = res.Metadata.Found()
		}
		outcomes = append(outcomes, outcome)

		if bar != nil {
			bar.Describe(fmt.Sprintf("[cyan]%s - %s[reset]", song.Artist, song.Title))
			if err := bar.Add(1); err != nil {
				slog.Debug("Progress bar update failed", "error", err)
			}
		}
	}

	return outcomes, nil
}
