package rules

import (
	"github.com/TerminalGravity/battlesnake-rst/game"
)

// FloodFill counts the free cells reachable from start, including start
// itself, by breadth-first traversal over 4-connected neighbors inside the
// board rectangle.
//
// The occupied set is the union of every snake's body excluding each snake's
// tail tip: the tail vacates on the next turn, so it is not a real obstacle
// for planning. Returns 0 when start is out of bounds or occupied. The count
// depends only on reachability, never on traversal order.
func FloodFill(state *game.GameState, start game.Point) int {
	occupied := make(map[game.Point]bool)
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		for j := 0; j < len(s.Body)-1; j++ {
			occupied[s.Body[j]] = true
		}
	}

	if !state.InBounds(start) || occupied[start] {
		return 0
	}

	visited := map[game.Point]bool{start: true}
	queue := []game.Point{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, m := range AllMoves {
			n := ApplyMove(p, m)
			if !state.InBounds(n) || visited[n] || occupied[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}

	return len(visited)
}
