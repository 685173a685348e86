// Package store persists decision turns as parquet for later analysis and
// replay. One row per (game, turn), with the board snapshot nested inside the
// row and the decision metadata alongside it.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/TerminalGravity/battlesnake-rst/game"
)

// MoveUnknown marks a turn where the acting move was not observed (for
// example, rows harvested from public games before the final frame).
const MoveUnknown int32 = -1

// TurnRow is a single (game, turn) snapshot plus how the recording snake
// decided. Optimized for compression: food and board dims are stored once per
// turn, snake data is nested.
//
// Move values follow the engine's enumeration: 0=Up, 1=Down, 2=Left, 3=Right,
// -1 unknown.
type TurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int32  `parquet:"turn"`
	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`

	FoodX []int32 `parquet:"food_x"`
	FoodY []int32 `parquet:"food_y"`

	Snakes []TurnSnake `parquet:"snakes"`

	Ruleset string `parquet:"ruleset,dict"`
	Source  string `parquet:"source,dict"`

	// Decision metadata for the snake that recorded this row. Layer names
	// the pipeline stage that chose the move; Score is meaningful only for
	// the search layer.
	DeciderID string `parquet:"decider_id,dict,optional"`
	Move      int32  `parquet:"move"`
	Layer     string `parquet:"layer,dict,optional"`
	Score     int32  `parquet:"score,optional"`
	LatencyMS int32  `parquet:"latency_ms,optional"`
}

type TurnSnake struct {
	ID     string `parquet:"id,dict"`
	Alive  bool   `parquet:"alive"`
	Health int32  `parquet:"health"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	// Move taken by this snake on this turn, MoveUnknown if not observed.
	Move int32 `parquet:"move"`
}

const schemaTurnRow = "decision_turn_v1"

// NewTurnRow snapshots a board state into a row. Decision metadata and
// per-snake moves start unknown; callers fill them in.
func NewTurnRow(gameID string, state *game.GameState, ruleset, source string) TurnRow {
	row := TurnRow{
		GameID:  gameID,
		Turn:    state.Turn,
		Width:   state.Width,
		Height:  state.Height,
		Ruleset: ruleset,
		Source:  source,
		Move:    MoveUnknown,
	}
	for _, f := range state.Food {
		row.FoodX = append(row.FoodX, f.X)
		row.FoodY = append(row.FoodY, f.Y)
	}
	for i := range state.Snakes {
		s := &state.Snakes[i]
		ts := TurnSnake{
			ID:     s.Id,
			Alive:  s.Health > 0 && len(s.Body) > 0,
			Health: s.Health,
			Move:   MoveUnknown,
		}
		for _, p := range s.Body {
			ts.BodyX = append(ts.BodyX, p.X)
			ts.BodyY = append(ts.BodyY, p.Y)
		}
		row.Snakes = append(row.Snakes, ts)
	}
	return row
}

// WriteTurnsParquet writes rows to outPath via a temp file and an atomic
// rename, so readers never observe a partial file.
func WriteTurnsParquet(outPath string, rows []TurnRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaTurnRow),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteTurnsBatchAtomic writes rows as a uniquely named batch file under
// outDir, staged in outDir/tmp and renamed into place. Returns the final
// path.
func WriteTurnsBatchAtomic(outDir string, rows []TurnRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaTurnRow),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	return finalPath, nil
}
