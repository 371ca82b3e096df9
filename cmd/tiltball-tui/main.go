package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
	"github.com/playmatatu/tiltball/internal/tui"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	// The screen owns the terminal, so logs go to a file or nowhere.
	log.SetOutput(io.Discard)
	if path := os.Getenv("TILTBALL_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if cfg.RNGSeed != 0 {
		rng = rand.New(rand.NewPCG(uint64(cfg.RNGSeed), 0))
	}

	sound := tui.NewSound(screen)
	defer sound.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Println("[TUI] Starting local session")
	tui.NewApp(screen, game.NewSimulator(rng), sound).Run(ctx)
}
