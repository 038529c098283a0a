package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"qbopt/config"
	"qbopt/db"
	"qbopt/optimizer"
	"qbopt/qbt"
	"qbopt/utils"
)

const VERSION = "0.1.0"

var CLI struct {
	Run struct {
	} `cmd:"" default:"1" help:"Manage the running qBittorrent instance until every download finishes."`
	Report struct {
	} `cmd:"" help:"Print a one-shot summary of torrents and their episode ordering."`
}

var journal *db.Database

func main() {
	println("qbopt v" + VERSION)
	initConfig()
	initLogging()
	defer shutdownLogging()
	ctx := kong.Parse(&CLI)
	switch ctx.Command() {
	case "run":
		initJournal()
		if journal != nil {
			defer journal.Close()
		}
		if err := runOptimizer(); err != nil {
			log.Error().Err(err).Msg("Optimizer stopped with error")
		}
	case "report":
		if err := runReport(); err != nil {
			log.Error().Err(err).Msg("Error building report")
		}
	default:
		ctx.PrintUsage(false)
	}
}

func initConfig() {
	// create the journal directory
	if dir := filepath.Dir(config.Main.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			log.Fatal().Err(err).Str("path", dir).Msg("Failed to create journal directory")
		}
	}
}

func initJournal() {
	var err error
	journal, err = db.Init()
	if err != nil {
		log.Error().Err(err).Msg("Error opening action journal, continuing without it")
		journal = nil
	}
}

func runOptimizer() error {
	client := login()

	log.Info().Msg("==============================================")
	log.Info().Msg(" Welcome to qBittorrent Optimizer.")
	log.Info().Msg("==============================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := optimizer.New(client, journalOrNil(), optimizer.Options{
		PollInterval: config.Main.PollInterval,
		StallWait:    config.Main.StallWait,
		StartWait:    config.Main.StartWait,
		ShutdownWait: config.Main.ShutdownWait,
	})
	opt.KeepMonitoring = watchStdin(ctx)

	err := opt.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Interrupted, exiting")
		return nil
	}
	return err
}

func runReport() error {
	client := login()

	torrents, err := client.Torrents()
	if err != nil {
		return err
	}
	if len(torrents) == 0 {
		log.Info().Msg("No torrents registered")
		return nil
	}
	for _, t := range torrents {
		log.Info().Str("state", string(t.State)).Msgf("%s", t.Name)
		files, err := client.Files(t.Hash)
		if err != nil {
			log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to list files")
			continue
		}
		for _, f := range files {
			if key, ok := optimizer.ExtractEpisode(f.Name); ok {
				log.Info().Msgf("  S%02dE%02d %s (%s, %.0f%%)",
					key.Season, key.Episode, f.Name, utils.FormatBytes(f.Size), f.Progress*100)
			} else {
				log.Info().Msgf("  %s (%s, %.0f%%)",
					f.Name, utils.FormatBytes(f.Size), f.Progress*100)
			}
		}
	}
	return nil
}

func login() *qbt.Client {
	client := qbt.NewClient(config.Main.URL)
	if err := client.Login(config.Main.Username, config.Main.Password); err != nil {
		log.Fatal().Err(err).Str("url", config.Main.URL).Msg("Login failed")
	}
	return client
}

// journalOrNil avoids handing the optimizer a typed nil.
func journalOrNil() optimizer.Journal {
	if journal == nil {
		return nil
	}
	return journal
}

// watchStdin forwards one signal per line typed by the operator, so the
// termination window can be answered from the console.
func watchStdin(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case ch <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
