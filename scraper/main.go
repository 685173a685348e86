// Command scraper harvests finished public games into the parquet archive:
// discovery crawls the leaderboards for game ids, the downloader streams each
// game's frames, and batches are flushed atomically with a dedupe log.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TerminalGravity/battlesnake-rst/scraper/discovery"
	"github.com/TerminalGravity/battlesnake-rst/scraper/downloader"
	"github.com/TerminalGravity/battlesnake-rst/store"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	outDir := fs.String("out-dir", "data/scraped", "Directory for batch .parquet files")
	logPath := fs.String("log-path", "data/written_games.log", "Append-only log of archived game ids")
	flushGames := fs.Int("flush-games", 1000, "Flush when this many games are buffered")
	flushEvery := fs.Duration("flush-every", time.Hour, "Flush at this interval regardless of count")
	maxPlayers := fs.Int("max-players", 50, "Players to check per leaderboard")
	requestDelay := fs.Duration("delay", 500*time.Millisecond, "Delay between HTTP requests")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	written, err := store.OpenWrittenLog(*logPath)
	if err != nil {
		log.Fatalf("open written log: %v", err)
	}
	defer written.Close()

	log.Printf("scraper starting: out=%s log=%s (%d archived) flush=%d/%s",
		*outDir, *logPath, written.Count(), *flushGames, *flushEvery)

	discCfg := discovery.DefaultConfig()
	discCfg.MaxPlayers = *maxPlayers
	discCfg.RequestDelay = *requestDelay

	// Seed discovery's dedupe set from the written log so known games are
	// filtered before they reach the download stage.
	existing := written.Snapshot()
	gameIDChan := make(chan string, 1000)
	go func() {
		defer close(gameIDChan)
		if err := discovery.NewWorker(discCfg, existing).Discover(gameIDChan); err != nil {
			log.Printf("discovery: %v", err)
		}
	}()

	dlCfg := downloader.DefaultConfig()

	flushTicker := time.NewTicker(*flushEvery)
	defer flushTicker.Stop()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	rowsBuf := make([]store.TurnRow, 0, 1024)
	gamesBuf := make([]string, 0, *flushGames)

	var downloaded, skipped, failed int

	flush := func(reason string) {
		if len(gamesBuf) == 0 {
			return
		}
		outPath, err := store.WriteTurnsBatchAtomic(*outDir, rowsBuf)
		if err != nil {
			log.Printf("flush (%s): %v", reason, err)
			return
		}
		if err := written.AddMany(gamesBuf); err != nil {
			// Parquet is on disk; losing a log append only risks a re-download.
			log.Printf("flush (%s) log append: %v", reason, err)
		}
		log.Printf("flushed %d games (%d rows) to %s", len(gamesBuf), len(rowsBuf), outPath)
		rowsBuf = rowsBuf[:0]
		gamesBuf = gamesBuf[:0]
	}

	for {
		select {
		case <-sigChan:
			flush("signal")
			log.Printf("interrupted; exiting")
			return
		case <-flushTicker.C:
			flush("ticker")
		case gameID, ok := <-gameIDChan:
			if !ok {
				flush("final")
				log.Printf("scrape complete: downloaded=%d skipped=%d failed=%d", downloaded, skipped, failed)
				return
			}

			if written.Has(gameID) {
				skipped++
				continue
			}

			info, frames, err := downloader.DownloadGame(gameID, dlCfg)
			if err != nil || len(frames) < 2 {
				failed++
				if failed%50 == 1 {
					log.Printf("download failures=%d (latest %s: %v, frames=%d)", failed, gameID, err, len(frames))
				}
				continue
			}

			rows := downloader.BuildTurnRows(gameID, info, frames)
			rowsBuf = append(rowsBuf, rows...)
			gamesBuf = append(gamesBuf, gameID)
			downloaded++
			if downloaded%50 == 0 {
				log.Printf("progress: downloaded=%d skipped=%d failed=%d buffered=%d games", downloaded, skipped, failed, len(gamesBuf))
			}

			if len(gamesBuf) >= *flushGames {
				flush("count")
			}
		}
	}
}
