package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vocdoni/davinci-anonvote/log"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	// validated before log.Init, which panics on an unknown level
	if err := validateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infow("starting anonvote-sim",
		"voters", cfg.Election.Voters,
		"yes", cfg.Election.Yes,
		"workers", cfg.Workers)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	res, err := runSimulation(ctx, cfg)
	if err != nil {
		log.Errorw(err, "simulation failed")
		os.Exit(1)
	}
	log.Infow("simulation finished",
		"election", res.ElectionID.String(),
		"accepted", res.Accepted,
		"yes", res.Yes,
		"no", res.Accepted-int(res.Yes),
		"elapsed", time.Since(start).String())
}
