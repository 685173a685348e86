package downloader

import (
	"testing"

	"github.com/TerminalGravity/battlesnake-rst/rules"
	"github.com/TerminalGravity/battlesnake-rst/store"
)

func TestBuildTurnRows_InfersMovesFromHeadDeltas(t *testing.T) {
	info := GameInfo{Ruleset: RulesetInfo{Name: "standard"}}
	frames := []FrameData{
		{
			Turn:  0,
			Board: BoardData{Width: 11, Height: 11},
			Food:  []Coord{{X: 5, Y: 5}},
			Snakes: []SnakeData{
				{ID: "a", Health: 100, Body: []Coord{{X: 1, Y: 1}, {X: 1, Y: 1}}},
				{ID: "b", Health: 100, Body: []Coord{{X: 9, Y: 9}, {X: 9, Y: 9}}},
			},
		},
		{
			Turn:  1,
			Board: BoardData{Width: 11, Height: 11},
			Snakes: []SnakeData{
				{ID: "a", Health: 99, Body: []Coord{{X: 1, Y: 2}, {X: 1, Y: 1}}},
				{ID: "b", Health: 99, Body: []Coord{{X: 8, Y: 9}, {X: 9, Y: 9}}},
			},
		},
	}

	rows := BuildTurnRows("g1", info, frames)
	if len(rows) != 2 {
		t.Fatalf("rows=%d want=2", len(rows))
	}
	if rows[0].Ruleset != "standard" || rows[0].Source != "scraper" {
		t.Fatalf("row header=%+v", rows[0])
	}
	if rows[0].Snakes[0].Move != int32(rules.MoveUp) {
		t.Fatalf("snake a move=%d want=up", rows[0].Snakes[0].Move)
	}
	if rows[0].Snakes[1].Move != int32(rules.MoveLeft) {
		t.Fatalf("snake b move=%d want=left", rows[0].Snakes[1].Move)
	}
	// Final frame has no successor to infer from.
	if rows[1].Snakes[0].Move != store.MoveUnknown {
		t.Fatalf("final frame move=%d want unknown", rows[1].Snakes[0].Move)
	}
}

func TestBuildTurnRows_DeadSnakeStaysUnknown(t *testing.T) {
	frames := []FrameData{
		{
			Turn:  5,
			Board: BoardData{Width: 11, Height: 11},
			Snakes: []SnakeData{
				{ID: "a", Health: 0, Body: []Coord{{X: 1, Y: 1}}, Death: &Death{Cause: "wall-collision", Turn: 5}},
				{ID: "b", Health: 50, Body: []Coord{{X: 3, Y: 3}, {X: 3, Y: 2}}},
			},
		},
		{
			Turn:  6,
			Board: BoardData{Width: 11, Height: 11},
			Snakes: []SnakeData{
				{ID: "b", Health: 49, Body: []Coord{{X: 4, Y: 3}, {X: 3, Y: 3}}},
			},
		},
	}

	rows := BuildTurnRows("g1", GameInfo{}, frames)
	if rows[0].Snakes[0].Alive {
		t.Fatalf("dead snake marked alive")
	}
	if rows[0].Snakes[0].Move != store.MoveUnknown {
		t.Fatalf("dead snake move=%d want unknown", rows[0].Snakes[0].Move)
	}
	if rows[0].Snakes[1].Move != int32(rules.MoveRight) {
		t.Fatalf("snake b move=%d want=right", rows[0].Snakes[1].Move)
	}
}
