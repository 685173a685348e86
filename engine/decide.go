package engine

import (
	"errors"

	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
)

// ErrNoSafeMoves is returned when the safety filter finds nothing. The caller
// answers with its fixed fallback direction; nothing else can be done.
var ErrNoSafeMoves = errors.New("no safe moves available")

// Pipeline layer labels, recorded per decision for the archive.
const (
	LayerForced = "forced"
	LayerSearch = "search"
	LayerFood   = "food"
	LayerSpace  = "space"
	LayerFirst  = "first"
)

// Decision is a chosen move plus how it was chosen. Score is meaningful only
// for the search layer.
type Decision struct {
	Move  int
	Layer string
	Score int
}

// Decide runs the ordered fallback pipeline for state.YouId:
//
//  1. safe-move gate: zero moves is ErrNoSafeMoves, one is returned as-is
//  2. lookahead search (skipped when SearchDepth <= 0)
//  3. below the food threshold, the safe move closing on the nearest food
//  4. the safe move with the most reachable space
//  5. the first safe move in enumeration order
//
// Every path ends in a legal move or ErrNoSafeMoves; search timeouts degrade
// inside Search and never surface here.
func Decide(state *game.GameState, cfg Config) (Decision, error) {
	safe := rules.SafeMoves(state, state.YouId)
	if len(safe) == 0 {
		return Decision{}, ErrNoSafeMoves
	}
	if len(safe) == 1 {
		return Decision{Move: safe[0], Layer: LayerForced}, nil
	}

	if cfg.SearchDepth > 0 {
		if move, score, ok := Search(state, cfg); ok {
			return Decision{Move: move, Layer: LayerSearch, Score: score}, nil
		}
	}

	you := state.SnakeByID(state.YouId)
	if you != nil && you.Health < cfg.FoodThreshold {
		if move, ok := moveTowardNearestFood(state, you, safe); ok {
			return Decision{Move: move, Layer: LayerFood}, nil
		}
	}

	if you != nil {
		if move, ok := bestSpaceMove(state, you, safe); ok {
			return Decision{Move: move, Layer: LayerSpace}, nil
		}
	}

	return Decision{Move: safe[0], Layer: LayerFirst}, nil
}

// moveTowardNearestFood picks the safe move minimizing the post-move Manhattan
// distance to the nearest food cell. Ties keep enumeration order.
func moveTowardNearestFood(state *game.GameState, you *game.Snake, safe []int) (int, bool) {
	if len(state.Food) == 0 {
		return 0, false
	}
	head := you.Head()

	nearest := state.Food[0]
	nearestDist := manhattan(head, nearest)
	for _, f := range state.Food[1:] {
		if d := manhattan(head, f); d < nearestDist {
			nearestDist = d
			nearest = f
		}
	}

	best := -1
	bestDist := 0
	for _, m := range safe {
		d := manhattan(rules.ApplyMove(head, m), nearest)
		if best < 0 || d < bestDist {
			best = m
			bestDist = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// bestSpaceMove ranks the safe moves by reachable space from the resulting
// head cell. Ties keep enumeration order.
func bestSpaceMove(state *game.GameState, you *game.Snake, safe []int) (int, bool) {
	head := you.Head()
	best := -1
	bestSpace := -1
	for _, m := range safe {
		space := rules.FloodFill(state, rules.ApplyMove(head, m))
		if space > bestSpace {
			bestSpace = space
			best = m
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func manhattan(a, b game.Point) int {
	dx := int(a.X - b.X)
	if dx < 0 {
		dx = -dx
	}
	dy := int(a.Y - b.Y)
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
