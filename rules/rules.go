// Package rules implements the game mechanics: legal-move generation, the
// flood-fill spatial evaluator, and the synchronized turn transition that
// advances every snake at once.
package rules

import (
	"github.com/TerminalGravity/battlesnake-rst/game"
)

// Move constants. This order is the fixed enumeration order used everywhere
// downstream: move generation emits candidates in this order and all
// tie-breaks keep the first-seen move.
const (
	MoveUp    = 0
	MoveDown  = 1
	MoveLeft  = 2
	MoveRight = 3
)

// AllMoves lists the four moves in enumeration order.
var AllMoves = [4]int{MoveUp, MoveDown, MoveLeft, MoveRight}

// ApplyMove returns the cell reached by taking move from p.
func ApplyMove(p game.Point, move int) game.Point {
	switch move {
	case MoveUp:
		return game.Point{X: p.X, Y: p.Y + 1}
	case MoveDown:
		return game.Point{X: p.X, Y: p.Y - 1}
	case MoveLeft:
		return game.Point{X: p.X - 1, Y: p.Y}
	case MoveRight:
		return game.Point{X: p.X + 1, Y: p.Y}
	}
	return p
}

// MoveName converts a move constant to its wire token.
func MoveName(move int) string {
	switch move {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	}
	return "up"
}

// ParseMove converts a wire token back to a move constant, -1 if unknown.
func ParseMove(name string) int {
	switch name {
	case "up":
		return MoveUp
	case "down":
		return MoveDown
	case "left":
		return MoveLeft
	case "right":
		return MoveRight
	}
	return -1
}

// SafeMoves returns the subset of the four moves that the identified snake
// can take this turn without dying to a wall, a body, or a losing
// head-to-head. The result preserves enumeration order. An empty result
// means the snake is trapped; that is a valid outcome, not an error.
func SafeMoves(state *game.GameState, snakeID string) []int {
	you := state.SnakeByID(snakeID)
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return nil
	}

	head := you.Head()
	moves := []int{}

	for _, m := range AllMoves {
		target := ApplyMove(head, m)

		if !state.InBounds(target) {
			continue
		}
		if hitsOwnBody(you, target) {
			continue
		}
		if hitsOtherBody(state, you, target) {
			continue
		}
		if dangerousHeadToHead(state, you, target) {
			continue
		}

		moves = append(moves, m)
	}

	return moves
}

// hitsOwnBody reports whether target is blocked by the snake's own body.
// The tail tip is permitted when the snake is longer than one segment and
// the tail is not stacked on the head: that cell vacates this turn.
func hitsOwnBody(you *game.Snake, target game.Point) bool {
	n := len(you.Body)
	for i := 0; i < n-1; i++ {
		if you.Body[i] == target {
			return true
		}
	}
	tail := you.Body[n-1]
	if target != tail {
		return false
	}
	if n > 1 && tail != you.Head() {
		return false // tail vacates
	}
	return true
}

// hitsOtherBody reports whether target is blocked by another snake's body.
// Each opponent's tail tip is excluded because it vacates this turn; its
// head cell still blocks (winning a head swap is handled separately).
func hitsOtherBody(state *game.GameState, you *game.Snake, target game.Point) bool {
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Id == you.Id || s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		for j := 0; j < len(s.Body)-1; j++ {
			if s.Body[j] == target {
				return true
			}
		}
	}
	return false
}

// dangerousHeadToHead reports whether an opponent that is not shorter than
// us could reach target this same turn. Equal length is a mutual kill, so
// it counts as unsafe too.
func dangerousHeadToHead(state *game.GameState, you *game.Snake, target game.Point) bool {
	myLength := you.Length()
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Id == you.Id || s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		if s.Length() < myLength {
			continue
		}
		theirHead := s.Head()
		for _, m := range AllMoves {
			if ApplyMove(theirHead, m) == target {
				return true
			}
		}
	}
	return false
}

// NextStateSimultaneous advances the board by one synchronized turn.
//
// The input state is never mutated: every call produces a fresh state, which
// is what makes the search engine's tree exploration and timeout early-return
// safe. Moves may omit entries; a live snake without a move steps in a fixed
// placeholder direction (up), which only happens on an upstream contract
// violation.
//
// All elimination classes are evaluated against the same post-move snapshot,
// so the iteration order of snakes never affects the result.
func NextStateSimultaneous(state *game.GameState, moves map[string]int) *game.GameState {
	next := state.Clone()
	next.Turn++

	// 1. Health decay and candidate heads.
	newHeads := make(map[string]game.Point, len(next.Snakes))
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		s.Health--

		move, ok := moves[s.Id]
		if !ok {
			move = MoveUp
		}
		newHeads[s.Id] = ApplyMove(s.Head(), move)
	}

	// 2. Food consumption. Two heads landing on the same food cell in the
	// same turn are both credited.
	eatenFood := make(map[int]bool)
	snakeAte := make(map[string]bool)
	for id, head := range newHeads {
		for i, f := range next.Food {
			if f == head {
				eatenFood[i] = true
				snakeAte[id] = true
			}
		}
	}
	if len(eatenFood) > 0 {
		remaining := make([]game.Point, 0, len(next.Food)-len(eatenFood))
		for i, f := range next.Food {
			if !eatenFood[i] {
				remaining = append(remaining, f)
			}
		}
		next.Food = remaining
	}

	// 3. Body update: push the new head, pop the tail unless the snake ate.
	for i := range next.Snakes {
		s := &next.Snakes[i]
		head, ok := newHeads[s.Id]
		if !ok {
			continue
		}

		body := make([]game.Point, 0, len(s.Body)+1)
		body = append(body, head)
		body = append(body, s.Body...)
		if snakeAte[s.Id] {
			s.Health = 100
		} else {
			body = body[:len(body)-1]
		}
		s.Body = body
	}

	// 4. Eliminations, all from the post-move snapshot.
	dead := make(map[string]bool)
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if _, moved := newHeads[s.Id]; !moved {
			dead[s.Id] = true
			continue
		}
		head := s.Head()

		// Starvation.
		if s.Health <= 0 {
			dead[s.Id] = true
		}

		// Wall collision.
		if !next.InBounds(head) {
			dead[s.Id] = true
		}

		// Self collision: head against any other segment of the new body.
		for j := 1; j < len(s.Body); j++ {
			if s.Body[j] == head {
				dead[s.Id] = true
				break
			}
		}

		// Body collision: head against a non-head segment of another snake's
		// new body. Bodies of snakes dying this same turn still count; the
		// snapshot is simultaneous.
		for k := range next.Snakes {
			other := &next.Snakes[k]
			if other.Id == s.Id {
				continue
			}
			if _, moved := newHeads[other.Id]; !moved {
				continue
			}
			for j := 1; j < len(other.Body); j++ {
				if other.Body[j] == head {
					dead[s.Id] = true
					break
				}
			}
		}
	}

	// Head-to-head: group the new heads by cell. Everyone strictly shorter
	// than the group maximum dies; if two or more snakes tie at the maximum,
	// all of them die.
	headGroups := make(map[game.Point][]*game.Snake)
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if _, moved := newHeads[s.Id]; !moved {
			continue
		}
		headGroups[s.Head()] = append(headGroups[s.Head()], s)
	}
	for _, group := range headGroups {
		if len(group) < 2 {
			continue
		}
		maxLen := 0
		for _, s := range group {
			if s.Length() > maxLen {
				maxLen = s.Length()
			}
		}
		atMax := 0
		for _, s := range group {
			if s.Length() == maxLen {
				atMax++
			}
		}
		for _, s := range group {
			if s.Length() < maxLen || atMax > 1 {
				dead[s.Id] = true
			}
		}
	}

	// 5. Drop eliminated snakes from the active list.
	finalSnakes := make([]game.Snake, 0, len(next.Snakes))
	for _, s := range next.Snakes {
		if dead[s.Id] {
			continue
		}
		finalSnakes = append(finalSnakes, s)
	}
	next.Snakes = finalSnakes

	return next
}

// IsGameOver returns true when at most one snake is still alive.
func IsGameOver(state *game.GameState) bool {
	living := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			living++
		}
	}
	return living <= 1
}
