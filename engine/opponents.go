package engine

import (
	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
)

// PredictOpponentMoves synthesizes one deterministic move per live opponent:
// the safe move whose resulting head cell sees the most reachable space.
// Ties keep the earlier move in enumeration order. A trapped opponent gets no
// entry; the simulator will step it with the placeholder move and eliminate
// it there.
func PredictOpponentMoves(state *game.GameState, selfID string) map[string]int {
	predicted := make(map[string]int)
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Id == selfID || s.Health <= 0 || len(s.Body) == 0 {
			continue
		}

		best := -1
		bestSpace := -1
		for _, m := range rules.SafeMoves(state, s.Id) {
			space := rules.FloodFill(state, rules.ApplyMove(s.Head(), m))
			if space > bestSpace {
				bestSpace = space
				best = m
			}
		}
		if best >= 0 {
			predicted[s.Id] = best
		}
	}
	return predicted
}
