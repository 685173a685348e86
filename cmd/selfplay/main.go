// Command selfplay runs engine-vs-engine games on a worker pool and archives
// every turn to parquet batches.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/TerminalGravity/battlesnake-rst/engine"
	"github.com/TerminalGravity/battlesnake-rst/selfplay"
	"github.com/TerminalGravity/battlesnake-rst/store"
)

type finishedGame struct {
	rows   []store.TurnRow
	result selfplay.GameResult
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	games := fs.Int("games", 100, "Number of games to play (0 = run until interrupted)")
	workers := fs.Int("workers", 4, "Concurrent games")
	outDir := fs.String("out", "data/selfplay", "Output directory for parquet batches")
	flushGames := fs.Int("flush-games", 20, "Finalize a parquet batch after this many games")
	rulesetName := fs.String("ruleset", "standard", "Ruleset (standard, solo, royale, squad, constrictor, wrapped)")
	depth := fs.Int("search-depth", engine.DefaultSearchDepth, "Search depth per decision")
	deadline := fs.Duration("deadline", 100*time.Millisecond, "Per-decision deadline")
	width := fs.Int("width", 11, "Board width")
	height := fs.Int("height", 11, "Board height")
	snakes := fs.Int("snakes", 2, "Snakes per game (2-4)")
	maxTurns := fs.Int("max-turns", 1000, "Abort games running longer than this")
	verbose := fs.Bool("verbose", false, "Print boards while playing")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	cfg := engine.NewConfig(engine.ParseRuleset(*rulesetName))
	cfg.SearchDepth = *depth
	cfg.Deadline = *deadline

	opts := selfplay.Options{
		Width:      int32(*width),
		Height:     int32(*height),
		SnakeCount: *snakes,
		MaxTurns:   *maxTurns,
		Verbose:    *verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := make(chan int)
	results := make(chan finishedGame, *workers)

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for range jobs {
				rows, result, err := selfplay.PlayGame(ctx, workerID, cfg, opts)
				if err != nil {
					return
				}
				results <- finishedGame{rows: rows, result: result}
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for i := 0; *games == 0 || i < *games; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer loop: buffer finished games and finalize a batch every
	// flushGames so readers pick up data while the run is still going.
	var writer *store.BatchWriter
	played, wins, draws := 0, 0, 0

	flush := func() {
		if writer == nil {
			return
		}
		outPath, rows, batchGames, err := writer.Finalize()
		writer = nil
		if err != nil {
			log.Printf("flush batch: %v", err)
			return
		}
		if rows > 0 {
			log.Printf("wrote %d rows (%d games) to %s", rows, batchGames, outPath)
		}
	}

	for g := range results {
		if writer == nil {
			w, err := store.NewBatchWriter(*outDir)
			if err != nil {
				log.Fatalf("open batch writer: %v", err)
			}
			writer = w
		}
		if err := writer.WriteRows(g.rows); err != nil {
			log.Printf("write rows: %v", err)
		}
		writer.NoteGameWritten()

		played++
		switch g.result.WinnerId {
		case "":
			draws++
		case "snake1":
			wins++
		}
		log.Printf("game %d done: winner=%q steps=%d", played, g.result.WinnerId, g.result.Steps)

		if writer.BufferedGames() >= *flushGames {
			flush()
		}
	}
	flush()

	log.Printf("finished: %d games, snake1 wins=%d, draws=%d", played, wins, draws)
}
