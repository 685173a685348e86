package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Archive is a read-only DuckDB view over the parquet batches written by the
// server, the self-play runner, and the scraper.
type Archive struct {
	db *sql.DB
}

// OpenArchive creates an in-memory DuckDB with a `turns` view over every
// parquet file under the given roots. Files still staged under tmp/ are
// excluded.
func OpenArchive(roots []string) (*Archive, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+strings.ReplaceAll(glob, "'", "''")+"'")
	}
	if len(globs) == 0 {
		_ = db.Close()
		return nil, fmt.Errorf("no archive roots given")
	}

	viewSQL := `CREATE OR REPLACE VIEW turns AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(viewSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create turns view: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

type GameSummary struct {
	GameID  string
	Ruleset string
	Source  string
	Turns   int32
	Width   int32
	Height  int32
}

// Games lists every archived game, newest first by id which embeds the start
// timestamp for self-play games.
func (a *Archive) Games(ctx context.Context) ([]GameSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT
			game_id,
			MIN(ruleset)::VARCHAR,
			MIN(source)::VARCHAR,
			(MAX(turn) - MIN(turn) + 1)::INTEGER,
			MIN(width)::INTEGER,
			MIN(height)::INTEGER
		FROM turns
		GROUP BY game_id
		ORDER BY game_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameSummary
	for rows.Next() {
		var g GameSummary
		var ruleset, source sql.NullString
		if err := rows.Scan(&g.GameID, &ruleset, &source, &g.Turns, &g.Width, &g.Height); err != nil {
			return nil, err
		}
		g.Ruleset = ruleset.String
		g.Source = source.String
		out = append(out, g)
	}
	return out, rows.Err()
}

type Point struct {
	X int32
	Y int32
}

type SnakeView struct {
	ID     string
	Alive  bool
	Health int32
	Body   []Point
	Move   int32
}

type TurnView struct {
	Turn   int32
	Width  int32
	Height int32
	Food   []Point
	Snakes []SnakeView

	DeciderID string
	Move      int32
	Layer     string
	Score     int32
	LatencyMS int32
}

// Turns loads a game's turns in order.
func (a *Archive) Turns(ctx context.Context, gameID string) ([]TurnView, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT turn, width, height, food_x, food_y, snakes,
			decider_id, move, layer, score, latency_ms
		FROM turns
		WHERE game_id = ?
		ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnView
	for rows.Next() {
		var t TurnView
		var foodX, foodY, snakes any
		var decider, layer sql.NullString
		var move, score, latency sql.NullInt32
		if err := rows.Scan(&t.Turn, &t.Width, &t.Height, &foodX, &foodY, &snakes,
			&decider, &move, &layer, &score, &latency); err != nil {
			return nil, err
		}
		t.Food = zipPoints(asInt32Slice(foodX), asInt32Slice(foodY))
		t.Snakes = asSnakeViews(snakes)
		t.DeciderID = decider.String
		t.Layer = layer.String
		t.Move = move.Int32
		t.Score = score.Int32
		t.LatencyMS = latency.Int32
		out = append(out, t)
	}
	return out, rows.Err()
}
