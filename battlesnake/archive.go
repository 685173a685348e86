package main

import (
	"log"
	"time"

	"github.com/TerminalGravity/battlesnake-rst/store"
)

const (
	archiveFlushRows     = 512
	archiveFlushInterval = 30 * time.Second
)

// archiver buffers decision rows from the request handlers and flushes them
// as parquet batches in the background, so /move never blocks on disk.
type archiver struct {
	dir   string
	rows  chan store.TurnRow
	games chan string
}

func newArchiver(dir string) (*archiver, error) {
	// Fail fast on an unwritable directory before the server starts.
	w, err := store.NewBatchWriter(dir)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := w.Finalize(); err != nil {
		return nil, err
	}

	return &archiver{
		dir:   dir,
		rows:  make(chan store.TurnRow, 1024),
		games: make(chan string, 64),
	}, nil
}

func (a *archiver) record(row store.TurnRow) {
	select {
	case a.rows <- row:
	default:
		// Shed load rather than stall a move response.
		log.Printf("archive buffer full, dropping turn %d of game %s", row.Turn, row.GameID)
	}
}

func (a *archiver) gameDone(gameID string) {
	select {
	case a.games <- gameID:
	default:
	}
}

// loop drains the row channel into a batch writer, rotating the batch when
// it grows past archiveFlushRows or archiveFlushInterval elapses.
func (a *archiver) loop() {
	var writer *store.BatchWriter
	ticker := time.NewTicker(archiveFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if writer == nil {
			return
		}
		outPath, rows, games, err := writer.Finalize()
		writer = nil
		if err != nil {
			log.Printf("archive flush: %v", err)
			return
		}
		if rows > 0 {
			log.Printf("archived %d rows (%d games) to %s", rows, games, outPath)
		}
	}

	for {
		select {
		case row := <-a.rows:
			if writer == nil {
				w, err := store.NewBatchWriter(a.dir)
				if err != nil {
					log.Printf("archive writer: %v", err)
					continue
				}
				writer = w
			}
			if err := writer.WriteRows([]store.TurnRow{row}); err != nil {
				log.Printf("archive write: %v", err)
				continue
			}
			if writer.BufferedRows() >= archiveFlushRows {
				flush()
			}
		case <-a.games:
			if writer != nil {
				writer.NoteGameWritten()
			}
		case <-ticker.C:
			flush()
		}
	}
}
