package engine

import (
	"testing"

	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
)

func TestEvaluate_DeadSelfIsSentinel(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "opp",
			Health: 80,
			Body:   []game.Point{{X: 0, Y: 0}, {X: 0, Y: 1}},
		}},
	}

	if got := Evaluate(state, "me"); got != ScoreDead {
		t.Fatalf("score=%d want=%d", got, ScoreDead)
	}
}

func TestEvaluate_SoleSurvivorIsSentinel(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 80,
			Body:   []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}},
		}},
	}

	if got := Evaluate(state, "me"); got != ScoreSoleSurvivor {
		t.Fatalf("score=%d want=%d", got, ScoreSoleSurvivor)
	}
}

func TestEvaluate_Formula(t *testing.T) {
	// Own head sits in the occupied set for any snake longer than one
	// segment, so the space term is 0 here: 50 + 10*2 + 2*0 + 5*(2-3) = 65.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}}},
			{Id: "opp", Health: 80, Body: []game.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}},
		},
	}

	if got := Evaluate(state, "me"); got != 65 {
		t.Fatalf("score=%d want=65", got)
	}
}

func TestEvaluate_LengthOneSnakeCountsSpace(t *testing.T) {
	// A single-segment snake's head is its own tail tip, which the occupied
	// set excludes, so the fill runs: 24 reachable cells on the 5x5 board
	// with only the opponent's head blocked.
	// 50 + 10*1 + 2*24 + 5*(1-2) = 103.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 2, Y: 2}}},
			{Id: "opp", Health: 80, Body: []game.Point{{X: 0, Y: 0}, {X: 0, Y: 1}}},
		},
	}

	if got := Evaluate(state, "me"); got != 103 {
		t.Fatalf("score=%d want=103", got)
	}
}

func TestPredictOpponentMoves_PicksMostSpace(t *testing.T) {
	// A wall down column 2 splits the board. The opponent in the bottom-left
	// corner can go up or left into the 9-cell pocket, or right through the
	// wall's vacating tail cell into the 11-cell open side.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 100, Body: []game.Point{{X: 2, Y: 4}, {X: 2, Y: 3}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0}}},
			{Id: "opp", Health: 100, Body: []game.Point{{X: 1, Y: 0}, {X: 0, Y: 0}}},
		},
	}

	predicted := PredictOpponentMoves(state, "me")
	if len(predicted) != 1 {
		t.Fatalf("predicted %d moves want 1: %v", len(predicted), predicted)
	}
	if predicted["opp"] != rules.MoveRight {
		t.Fatalf("predicted move=%s want=right", rules.MoveName(predicted["opp"]))
	}
}

func TestPredictOpponentMoves_TieKeepsEnumerationOrder(t *testing.T) {
	// All three safe moves for the opponent see the same connected region, so
	// the first in enumeration order wins.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 100, Body: []game.Point{{X: 4, Y: 4}, {X: 4, Y: 3}}},
			{Id: "opp", Health: 100, Body: []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0}}},
		},
	}

	predicted := PredictOpponentMoves(state, "me")
	if predicted["opp"] != rules.MoveUp {
		t.Fatalf("predicted move=%s want=up", rules.MoveName(predicted["opp"]))
	}
}

func TestPredictOpponentMoves_TrappedOpponentHasNoEntry(t *testing.T) {
	// Opponent boxed into the corner with a stacked tail: no safe move, so it
	// contributes nothing.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 100, Body: []game.Point{{X: 4, Y: 4}, {X: 4, Y: 3}}},
			{Id: "opp", Health: 100, Body: []game.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 0}}},
		},
	}

	predicted := PredictOpponentMoves(state, "me")
	if _, ok := predicted["opp"]; ok {
		t.Fatalf("trapped opponent should contribute no move, got %v", predicted)
	}
}
