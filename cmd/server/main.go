/*
Package main
File: main.go
Description: Server entry point. Loads the upgrade catalog, starts the fixed-timestep
scheduler and the real-time WebSocket hub, and pushes state snapshots to clients
at the broadcast rate.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/api"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/config"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/scheduler"
)

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func main() {
	configPath := flag.String("config", "clicker.yaml", "YAML settings file (optional)")
	envPath := flag.String("env", ".env", "dotenv file (optional)")
	flag.Parse()

	// 1. Settings and the static upgrade catalog
	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatalf("Config Fail: %v", err)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Catalog Fail: %v", err)
	}
	log.Printf("Catalog loaded: %d upgrades", cat.Len())

	// 2. Game state, logic tick, and the real-time layer
	eng := engine.New(cat)
	sched := scheduler.New(eng, clock.Real{}, cfg.TickRate)
	srv := api.NewServer(eng, sched, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		srv.Hub().Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	// 3. THE STATE PULSE
	// Clients redraw from these snapshots; it never advances the simulation.
	pulse := scheduler.NewRenderLoop(cfg.BroadcastRate, clock.Real{}, func(scheduler.FrameInfo) {
		srv.PublishState()
	})
	go func() {
		defer wg.Done()
		pulse.Run(ctx)
	}()

	unwatch := srv.WatchPurchases()
	defer unwatch()

	// 4. Start the Server
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("URANIUM CLICKER server live on %s (tick %d Hz, broadcast %d Hz)", cfg.ListenAddr, cfg.TickRate, cfg.BroadcastRate)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("SIGNAL: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	wg.Wait()
	log.Printf("Final balance: %.2f", eng.Currency())
}
