// Command play runs a Legendary Lines game in the terminal.
//
// It shares configuration with the server (PHRASES_FILE, AI_PROVIDER,
// LEDGER_DRIVER, ...) and records final scores into the same ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/app"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/config"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/export"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/i18n"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ledger"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup, such as closing
// the ledger, happens before the process exits.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var (
		difficulty = flag.String("difficulty", string(game.DifficultyMedium), "EASY, MEDIUM or HARD")
		rounds     = flag.Int("rounds", 5, "number of rounds (1-10)")
		lang       = flag.String("lang", cfg.DefaultLanguage, "display language (en, es)")
		fast       = flag.Bool("fast", false, "skip the pauses between rounds")
		verbose    = flag.Bool("v", false, "log to stderr")
	)
	flag.StringVar(&cfg.LedgerDriver, "ledger", cfg.LedgerDriver, "score ledger: sqlite, postgres or memory")
	flag.Parse()

	if !*verbose {
		cfg.LogLevel = "warn"
	}
	log := app.NewLogger(cfg, os.Stderr)

	d, ok := game.ParseDifficulty(*difficulty)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown difficulty %q\n", *difficulty)
		return 2
	}
	tag := i18n.Match(*lang)
	sess, err := game.NewSession(uuid.NewString(), game.Settings{
		Difficulty:  d,
		TotalRounds: *rounds,
		History:     cfg.History(),
		Language:    tag.String(),
	}, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	src, judge, err := app.Collaborators(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	led, err := ledger.Open(cfg.LedgerDriver, cfg.DatabasePath, cfg.DatabaseURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open ledger: %v\n", err)
		return 1
	}
	defer led.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		// stdin reads do not observe ctx
		os.Stdin.Close()
	}()

	p := &player{
		m: game.NewMachine(sess, game.Deps{
			Phrases: src,
			Judge:   judge,
			Ledger:  ledger.Recorder{Ledger: led, GameType: cfg.GameType},
			Logger:  log,
		}),
		tag:      tag,
		out:      os.Stdout,
		board:    led,
		gameType: cfg.GameType,
		sleep:    sleepCtx,
	}
	if *fast {
		p.sleep = func(context.Context, time.Duration) {}
	}
	if cfg.ExportFile != "" {
		p.exporter = export.New(cfg.ExportFile)
	}
	if err := p.play(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
