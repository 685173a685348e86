package engine

import (
	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
)

// Score sentinels. Kept far away from the int extremes so that arithmetic
// around them in the search can never overflow.
const (
	ScoreDead         = -1_000_000
	ScoreSoleSurvivor = 1_000_000
)

// Evaluate scores a state from selfID's perspective. Higher is better.
// Dead self is ScoreDead, sole survivor is ScoreSoleSurvivor; otherwise the
// score combines health, length, reachable space from the head, and the
// length advantage over the longest live opponent.
func Evaluate(state *game.GameState, selfID string) int {
	you := state.SnakeByID(selfID)
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return ScoreDead
	}

	maxOpponent := 0
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Id == selfID || s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		if s.Length() > maxOpponent {
			maxOpponent = s.Length()
		}
	}
	if maxOpponent == 0 {
		return ScoreSoleSurvivor
	}

	space := rules.FloodFill(state, you.Head())
	return int(you.Health) + 10*you.Length() + 2*space + 5*(you.Length()-maxOpponent)
}
