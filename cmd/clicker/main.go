/*
Package main
File: main.go
Description: Terminal entry point. Runs one game locally: the scheduler ticks the
simulation, the tui package draws it with tcell, and beep plays feedback sounds
when audio is enabled.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/audio"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/config"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/scheduler"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clicker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "clicker.yaml", "YAML settings file (optional)")
	envPath := flag.String("env", ".env", "dotenv file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		return err
	}

	// The terminal owns stdout; logs go to a file or nowhere.
	log.SetOutput(io.Discard)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	var cat *catalog.Catalog
	if cfg.CatalogPath == "" {
		cat, err = catalog.Default()
	} else {
		cat, err = catalog.Load(cfg.CatalogPath)
	}
	if err != nil {
		return err
	}

	eng := engine.New(cat)
	sched := scheduler.New(eng, clock.Real{}, cfg.TickRate)

	var sounds tui.Sounder
	if cfg.Audio {
		player := audio.NewPlayer(0.5)
		if err := player.Init(); err != nil {
			// Non-fatal, the game runs without sound
			log.Printf("Audio initialization failed: %v", err)
		} else {
			defer player.Close()
			sounds = player
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := tui.New(screen, eng, sched, sounds, tui.Options{
		FPS:              cfg.RenderFPS,
		CompactThreshold: cfg.CompactThreshold,
		Clock:            clock.Real{},
	})
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("Final balance: %.2f", eng.Currency())
	return nil
}
