package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/batch"
	"github.com/jaki95/songinfo/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	artist := flag.String("artist", "", "Artist name")
	title := flag.String("title", "", "Song title")
	csvFile := flag.String("file", "", "CSV file with artist,title rows")
	jsonOutput := flag.Bool("json", false, "Print one JSON object per song")
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "  %s -artist \"Daniel Caesar\" -title \"Superpowers\"\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "  %s -file songs.csv -json\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var songs []batch.Song
	single := *csvFile == ""
	if single {
		if *artist == "" || *title == "" {
			flag.Usage()
			return 2
		}
		songs = []batch.Song{{Artist: *artist, Title: *title}}
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		cfg.ApplyEnv()
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	// Keep stdout for results
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !single {
		songs, err = batch.ReadCSV(ctx, *csvFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	svc, err := service.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		return 1
	}
	defer svc.Close()

	var bar *progressbar.ProgressBar
	if !single && !*jsonOutput {
		bar = progressbar.NewOptions(
			len(songs),
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Resolving songs...[reset]"),
		)
	}

	outcomes, err := batch.Run(ctx, svc.Resolver, songs, bar)
	if bar != nil {
		fmt.Println()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	found := 0
	for _, o := range outcomes {
		if o.Success {
			found++
		}
		if *jsonOutput {
			data, err := json.Marshal(o)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Println(string(data))
			continue
		}
		printOutcome(o)
	}

	if single && found == 0 {
		return 1
	}
	return 0
}

func printOutcome(o batch.Outcome) {
	if !o.Success {
		fmt.Fprintf(os.Stderr, "%s - %s: song info not found\n", o.Artist, o.Song)
		return
	}

	fmt.Printf("%s - %s\n", o.Artist, o.Song)
	fmt.Printf("  BPM: %d\n", *o.BPM)
	if o.Key != nil {
		fmt.Printf("  Key: %s\n", *o.Key)
	}
	if o.Genre != nil {
		fmt.Printf("  Genre: %s\n", *o.Genre)
	}
}
