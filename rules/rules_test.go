package rules

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/TerminalGravity/battlesnake-rst/game"
)

func dumpState(state *game.GameState) string {
	if state == nil {
		return "<nil state>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%dx%d You=%s\n", state.Turn, state.Width, state.Height, state.YouId)

	fmt.Fprintf(&b, "Food(%d):", len(state.Food))
	for _, f := range state.Food {
		fmt.Fprintf(&b, " (%d,%d)", f.X, f.Y)
	}
	b.WriteString("\n")

	snakes := make([]game.Snake, len(state.Snakes))
	copy(snakes, state.Snakes)
	sort.Slice(snakes, func(i, j int) bool { return snakes[i].Id < snakes[j].Id })
	for _, s := range snakes {
		fmt.Fprintf(&b, "Snake %s Health=%d Len=%d Body:", s.Id, s.Health, len(s.Body))
		for _, p := range s.Body {
			fmt.Fprintf(&b, " (%d,%d)", p.X, p.Y)
		}
		b.WriteString("\n")
	}

	w, h := int(state.Width), int(state.Height)
	if w > 0 && h > 0 && w <= 40 && h <= 40 {
		food := make(map[[2]int]bool, len(state.Food))
		for _, f := range state.Food {
			food[[2]int{int(f.X), int(f.Y)}] = true
		}
		occ := make(map[[2]int]int, 64)
		head := make(map[[2]int]bool, 8)
		for _, s := range state.Snakes {
			for i, p := range s.Body {
				k := [2]int{int(p.X), int(p.Y)}
				occ[k]++
				if i == 0 {
					head[k] = true
				}
			}
		}

		b.WriteString("Board:\n")
		for y := h - 1; y >= 0; y-- {
			for x := 0; x < w; x++ {
				k := [2]int{x, y}
				switch {
				case head[k]:
					b.WriteByte('H')
				case food[k] && occ[k] > 0:
					b.WriteByte('*')
				case food[k]:
					b.WriteByte('F')
				case occ[k] > 0:
					c := occ[k]
					if c > 9 {
						c = 9
					}
					b.WriteByte(byte('0' + c))
				default:
					b.WriteByte('.')
				}
			}
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func logTransition(t *testing.T, name string, before *game.GameState, moves map[string]int, after *game.GameState) {
	t.Helper()
	ids := make([]string, 0, len(moves))
	for id := range moves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var mv strings.Builder
	mv.WriteString("Moves:")
	for _, id := range ids {
		fmt.Fprintf(&mv, " %s=%s", id, MoveName(moves[id]))
	}
	mv.WriteByte('\n')
	t.Logf("=== %s ===\nBefore:\n%s%sAfter:\n%s", name, dumpState(before), mv.String(), dumpState(after))
}

func movesEqual(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSafeMoves_TailVacatesOn3x3(t *testing.T) {
	// Single snake of length 2 in the middle of a 3x3 board. The tail cell
	// vacates this turn, so all four directions are available.
	state := &game.GameState{
		Width:  3,
		Height: 3,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 1, Y: 1}, {X: 1, Y: 0}},
		}},
	}

	got := SafeMoves(state, "me")
	want := []int{MoveUp, MoveDown, MoveLeft, MoveRight}
	if !movesEqual(got, want) {
		t.Fatalf("safe moves=%v want=%v\n%s", got, want, dumpState(state))
	}
}

func TestSafeMoves_WallsAndOwnBody(t *testing.T) {
	// Snake in the bottom-left corner with its body blocking the right.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
		}},
	}

	got := SafeMoves(state, "me")
	want := []int{MoveUp}
	if !movesEqual(got, want) {
		t.Fatalf("safe moves=%v want=%v\n%s", got, want, dumpState(state))
	}
}

func TestSafeMoves_StackedTailIsBlocked(t *testing.T) {
	// After eating, the tail is duplicated and does not vacate this turn.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 100,
			Body:   []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 1}},
		}},
	}

	got := SafeMoves(state, "me")
	want := []int{MoveUp, MoveLeft, MoveRight}
	if !movesEqual(got, want) {
		t.Fatalf("safe moves=%v want=%v\n%s", got, want, dumpState(state))
	}
}

func TestSafeMoves_OpponentTailTipIsAllowed(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 1, Y: 0}, {X: 0, Y: 0}}},
			{Id: "opp", Health: 50, Body: []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0}}},
		},
	}

	// Right lands on (2,0): the opponent's tail tip, which vacates, and the
	// opponent head at (3,3) cannot reach (2,0) this turn. Left lands on our
	// own vacating tail.
	got := SafeMoves(state, "me")
	want := []int{MoveUp, MoveLeft, MoveRight}
	if !movesEqual(got, want) {
		t.Fatalf("safe moves=%v want=%v\n%s", got, want, dumpState(state))
	}
}

func TestSafeMoves_HeadToHeadDangerAgainstLongerSnake(t *testing.T) {
	// Opponent of length 3 can reach (2,2) next turn; we are length 2, so
	// moving there loses the head-to-head and must be filtered.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 2, Y: 1}, {X: 2, Y: 0}}},
			{Id: "opp", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 2, Y: 4}, {X: 1, Y: 4}}},
		},
	}

	got := SafeMoves(state, "me")
	for _, m := range got {
		if m == MoveUp {
			t.Fatalf("up should be filtered as a losing head-to-head, got %v\n%s", got, dumpState(state))
		}
	}
	want := []int{MoveDown, MoveLeft, MoveRight}
	if !movesEqual(got, want) {
		t.Fatalf("safe moves=%v want=%v\n%s", got, want, dumpState(state))
	}
}

func TestSafeMoves_HeadToHeadAllowedAgainstShorterSnake(t *testing.T) {
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 2, Y: 1}, {X: 2, Y: 0}, {X: 1, Y: 0}}},
			{Id: "opp", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 2, Y: 4}}},
		},
	}

	got := SafeMoves(state, "me")
	found := false
	for _, m := range got {
		if m == MoveUp {
			found = true
		}
	}
	if !found {
		t.Fatalf("up should be allowed against a strictly shorter snake, got %v\n%s", got, dumpState(state))
	}
}

func TestSafeMoves_TrappedReturnsEmpty(t *testing.T) {
	// Fully enclosed in the corner by our own body; empty result is a valid
	// outcome, not an error.
	state := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		}},
	}

	got := SafeMoves(state, "me")
	if len(got) != 0 {
		t.Fatalf("safe moves=%v want none\n%s", got, dumpState(state))
	}
}

func TestNextState_NormalMove_NoFood(t *testing.T) {
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 10,
			Body:   []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}},
		}},
	}

	moves := map[string]int{"me": MoveUp}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "normal move", before, moves, after)

	got := after.Snakes[0].Body
	want := []game.Point{{X: 3, Y: 4}, {X: 3, Y: 3}, {X: 3, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("body len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v", i, got[i], want[i])
		}
	}
	if after.Snakes[0].Health != 9 {
		t.Fatalf("health=%d want=9", after.Snakes[0].Health)
	}
	if after.Turn != before.Turn+1 {
		t.Fatalf("turn=%d want=%d", after.Turn, before.Turn+1)
	}
}

func TestNextState_EatFood_ResetsHealthAndGrows(t *testing.T) {
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 10,
			Body:   []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}},
		}},
		Food: []game.Point{{X: 3, Y: 4}},
	}

	moves := map[string]int{"me": MoveUp}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "eat food", before, moves, after)

	got := after.Snakes[0].Body
	want := []game.Point{{X: 3, Y: 4}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("body len=%d want=%d (growth = no tail removal)", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v", i, got[i], want[i])
		}
	}
	if after.Snakes[0].Health != 100 {
		t.Fatalf("health=%d want=100", after.Snakes[0].Health)
	}
	if len(after.Food) != 0 {
		t.Fatalf("food len=%d want=0", len(after.Food))
	}
}

func TestNextState_SharedFood_BothCredited(t *testing.T) {
	// Two heads land on the same food cell. Both are credited; the
	// head-to-head rule then decides who survives.
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 10, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3}}},
			{Id: "b", Health: 10, Body: []game.Point{{X: 4, Y: 3}, {X: 5, Y: 3}}},
		},
		Food: []game.Point{{X: 3, Y: 3}},
	}

	moves := map[string]int{"a": MoveRight, "b": MoveLeft}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "shared food", before, moves, after)

	if len(after.Food) != 0 {
		t.Fatalf("food len=%d want=0", len(after.Food))
	}
	// a is strictly longer, so a survives the head-to-head with full health
	// and grown body; b is removed.
	a := after.SnakeByID("a")
	if a == nil {
		t.Fatalf("snake a should survive the head-to-head")
	}
	if after.SnakeByID("b") != nil {
		t.Fatalf("snake b should be eliminated")
	}
	if a.Health != 100 {
		t.Fatalf("snake a health=%d want=100", a.Health)
	}
	if len(a.Body) != 4 {
		t.Fatalf("snake a len=%d want=4", len(a.Body))
	}
}

func TestNextState_HeadToHead_EqualLengthBothDie(t *testing.T) {
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 4, Y: 3}, {X: 5, Y: 3}, {X: 6, Y: 3}}},
		},
	}

	moves := map[string]int{"a": MoveRight, "b": MoveLeft}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "head-to-head equal", before, moves, after)

	if len(after.Snakes) != 0 {
		t.Fatalf("snakes=%d want=0 (equal-length head-to-head kills both)", len(after.Snakes))
	}
}

func TestNextState_HeadToHead_ShorterDies(t *testing.T) {
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 4, Y: 3}, {X: 5, Y: 3}}},
		},
	}

	moves := map[string]int{"a": MoveRight, "b": MoveLeft}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "head-to-head shorter dies", before, moves, after)

	if after.SnakeByID("a") == nil {
		t.Fatalf("longer snake a should survive")
	}
	if after.SnakeByID("b") != nil {
		t.Fatalf("shorter snake b should be eliminated")
	}
}

func TestNextState_HeadToHead_ThreeWayTieAllDie(t *testing.T) {
	// Three snakes converging on (3,3), two tied at the maximum length.
	// Everyone strictly shorter dies, and the tied maximums both die too.
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 4, Y: 3}, {X: 5, Y: 3}, {X: 6, Y: 3}}},
			{Id: "c", Health: 50, Body: []game.Point{{X: 3, Y: 2}, {X: 3, Y: 1}}},
		},
	}

	moves := map[string]int{"a": MoveRight, "b": MoveLeft, "c": MoveUp}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "head-to-head three way", before, moves, after)

	if len(after.Snakes) != 0 {
		t.Fatalf("snakes=%d want=0 (tie at maximum kills every collider)", len(after.Snakes))
	}
}

func TestNextState_WallCollision(t *testing.T) {
	before := &game.GameState{
		Width:  3,
		Height: 3,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 0, Y: 2}, {X: 0, Y: 1}},
		}},
	}

	moves := map[string]int{"me": MoveUp}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "wall collision", before, moves, after)

	if len(after.Snakes) != 0 {
		t.Fatalf("snakes=%d want=0 (moved out of bounds)", len(after.Snakes))
	}
}

func TestNextState_Starvation(t *testing.T) {
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 1,
			Body:   []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}},
		}},
	}

	moves := map[string]int{"me": MoveUp}
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "starvation", before, moves, after)

	if len(after.Snakes) != 0 {
		t.Fatalf("snakes=%d want=0 (health reached 0)", len(after.Snakes))
	}
}

func TestNextState_TailChaseIsLegal(t *testing.T) {
	// A snake following its own tail into the vacated cell survives.
	before := &game.GameState{
		Width:  5,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}},
		}},
	}

	moves := map[string]int{"me": MoveUp} // onto (1,2), the vacating tail
	after := NextStateSimultaneous(before, moves)
	logTransition(t, "tail chase", before, moves, after)

	if after.SnakeByID("me") == nil {
		t.Fatalf("tail chase should be survivable")
	}
}

func TestNextState_InputStateIsNotMutated(t *testing.T) {
	before := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 10,
			Body:   []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}},
		}},
		Food: []game.Point{{X: 3, Y: 4}},
	}
	snapshot := before.Clone()

	_ = NextStateSimultaneous(before, map[string]int{"me": MoveUp})

	if before.Turn != snapshot.Turn ||
		before.Snakes[0].Health != snapshot.Snakes[0].Health ||
		len(before.Snakes[0].Body) != len(snapshot.Snakes[0].Body) ||
		len(before.Food) != len(snapshot.Food) {
		t.Fatalf("input state was mutated:\nbefore:\n%safter call:\n%s", dumpState(snapshot), dumpState(before))
	}
}
