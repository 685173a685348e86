package engine

import (
	"math"
	"time"

	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
)

// nextState is indirected so tests can count how many transitions a search
// actually runs.
var nextState = rules.NextStateSimultaneous

// Search runs the depth-bounded lookahead for state.YouId and returns the
// best root move with its score. ok is false only when there is no safe move
// at the root. A single safe move returns immediately without exploring. The
// deadline degrades the search to best-so-far; it never causes failure.
//
// One full ply is our move paired with the predicted opponent turn, applied
// together through the simultaneous transition. The root scores every
// candidate with fresh bounds and keeps the strictly greatest score, so the
// first move in enumeration order wins ties.
func Search(state *game.GameState, cfg Config) (move, score int, ok bool) {
	selfID := state.YouId
	safe := rules.SafeMoves(state, selfID)
	if len(safe) == 0 {
		return 0, 0, false
	}
	if len(safe) == 1 {
		return safe[0], 0, true
	}

	deadline := time.Now().Add(cfg.Deadline)
	predicted := PredictOpponentMoves(state, selfID)

	bestMove := safe[0]
	bestScore := math.MinInt
	for _, m := range safe {
		if time.Now().After(deadline) {
			break
		}

		moves := make(map[string]int, len(predicted)+1)
		for id, pm := range predicted {
			moves[id] = pm
		}
		moves[selfID] = m

		s := minimax(nextState(state, moves), selfID, cfg.SearchDepth-1, math.MinInt, math.MaxInt, false, deadline)
		if s > bestScore {
			bestScore = s
			bestMove = m
		}
	}
	return bestMove, bestScore, true
}

func minimax(state *game.GameState, selfID string, depth, alpha, beta int, maximizing bool, deadline time.Time) int {
	if time.Now().After(deadline) {
		return Evaluate(state, selfID)
	}
	if depth <= 0 || terminal(state) {
		return Evaluate(state, selfID)
	}

	if !maximizing {
		// The combined transition already applied the opponents' turn, so
		// this level is width 1: it only hands control back to us.
		return minimax(state, selfID, depth-1, alpha, beta, true, deadline)
	}

	safe := rules.SafeMoves(state, selfID)
	if len(safe) == 0 {
		return Evaluate(state, selfID)
	}
	predicted := PredictOpponentMoves(state, selfID)

	best := math.MinInt
	for _, m := range safe {
		moves := make(map[string]int, len(predicted)+1)
		for id, pm := range predicted {
			moves[id] = pm
		}
		moves[selfID] = m

		s := minimax(nextState(state, moves), selfID, depth-1, alpha, beta, false, deadline)
		if s > best {
			best = s
		}
		if best > alpha {
			alpha = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

// terminal reports whether the game cannot continue: one or zero live snakes.
func terminal(state *game.GameState) bool {
	live := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			live++
		}
	}
	return live <= 1
}
