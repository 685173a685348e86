package selfplay

import (
	"fmt"
	"log"
	"strings"

	"github.com/TerminalGravity/battlesnake-rst/game"
)

// PrintBoard logs an ASCII rendering of the state for verbose runs.
func PrintBoard(state *game.GameState) {
	grid := make([][]string, state.Height)
	for y := range grid {
		grid[y] = make([]string, state.Width)
		for x := range grid[y] {
			grid[y][x] = "."
		}
	}

	for _, f := range state.Food {
		if state.InBounds(f) {
			grid[f.Y][f.X] = "F"
		}
	}

	for i := range state.Snakes {
		s := &state.Snakes[i]
		head := byte('A' + i%26)
		body := byte('a' + i%26)
		for j, p := range s.Body {
			if !state.InBounds(p) {
				continue
			}
			if j == 0 {
				grid[p.Y][p.X] = string(head)
			} else if grid[p.Y][p.X] == "." || grid[p.Y][p.X] == "F" {
				grid[p.Y][p.X] = string(body)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n=== Turn %d ===\n", state.Turn))
	// Row 0 is the bottom of the board.
	for y := int(state.Height) - 1; y >= 0; y-- {
		sb.WriteString(strings.Join(grid[y], " "))
		sb.WriteString("\n")
	}
	for i := range state.Snakes {
		s := &state.Snakes[i]
		sb.WriteString(fmt.Sprintf("%c %s health=%d length=%d\n", 'A'+i%26, s.Id, s.Health, len(s.Body)))
	}
	log.Print(sb.String())
}
