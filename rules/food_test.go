package rules

import (
	"math/rand"
	"testing"

	"github.com/TerminalGravity/battlesnake-rst/game"
)

func TestFood_MinimumFoodIsEnforced(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}},
		}},
	}

	rng := rand.New(rand.NewSource(1))
	ApplyFoodSettings(state, rng, FoodSettings{MinimumFood: 3, FoodSpawnChance: 0})

	if len(state.Food) != 3 {
		t.Fatalf("food count=%d want=3", len(state.Food))
	}
	for _, f := range state.Food {
		if !state.InBounds(f) {
			t.Fatalf("food spawned out of bounds at %v", f)
		}
		for _, p := range state.Snakes[0].Body {
			if f == p {
				t.Fatalf("food spawned on snake body at %v", f)
			}
		}
	}
}

func TestFood_NoSpawnWhenMinimumMet(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		Food:   []game.Point{{X: 0, Y: 0}, {X: 4, Y: 4}},
	}

	rng := rand.New(rand.NewSource(1))
	ApplyFoodSettings(state, rng, FoodSettings{MinimumFood: 1, FoodSpawnChance: 0})

	if len(state.Food) != 2 {
		t.Fatalf("food count=%d want=2 (no spawn expected)", len(state.Food))
	}
}

func TestFood_SpawnChanceCanAddExtra(t *testing.T) {
	// With chance at 100 the extra spawn always fires.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		Food:   []game.Point{{X: 0, Y: 0}},
	}

	rng := rand.New(rand.NewSource(1))
	ApplyFoodSettings(state, rng, FoodSettings{MinimumFood: 1, FoodSpawnChance: 100})

	if len(state.Food) != 2 {
		t.Fatalf("food count=%d want=2 (extra spawn expected)", len(state.Food))
	}
}

func TestFood_NeverSpawnsOnOccupiedCells(t *testing.T) {
	// 3x3 board mostly covered by a snake; only (2,2) and the tail tip
	// column remain free. Ask for more food than there are free cells and
	// verify nothing lands on a body segment or an existing food cell.
	state := &game.GameState{
		Width:  3,
		Height: 3,
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body: []game.Point{
				{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2},
				{X: 1, Y: 2}, {X: 1, Y: 1}, {X: 1, Y: 0},
			},
		}},
		Food: []game.Point{{X: 2, Y: 0}},
	}

	rng := rand.New(rand.NewSource(7))
	ApplyFoodSettings(state, rng, FoodSettings{MinimumFood: 10, FoodSpawnChance: 0})

	// 9 cells - 6 body - 1 existing food = 2 free cells at most.
	if len(state.Food) > 3 {
		t.Fatalf("food count=%d exceeds free cells", len(state.Food))
	}
	seen := make(map[game.Point]bool)
	for _, f := range state.Food {
		if seen[f] {
			t.Fatalf("duplicate food at %v", f)
		}
		seen[f] = true
		for _, p := range state.Snakes[0].Body {
			if f == p {
				t.Fatalf("food spawned on snake body at %v", f)
			}
		}
	}
}

func TestFood_TurnTransitionWithFoodSpawns(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}},
		}},
	}

	rng := rand.New(rand.NewSource(3))
	next := NextStateSimultaneousWithFood(state, map[string]int{"me": MoveUp}, rng, FoodSettings{MinimumFood: 1, FoodSpawnChance: 0})

	if len(next.Food) != 1 {
		t.Fatalf("food count=%d want=1 after transition", len(next.Food))
	}
	if len(state.Food) != 0 {
		t.Fatalf("input state mutated: food count=%d want=0", len(state.Food))
	}
}
