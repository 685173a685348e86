// Command viewer replays archived games in the terminal: pick a game from
// the list, then step through its turns with the arrow keys.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var moveNames = [...]string{"up", "down", "left", "right"}

func moveLabel(m int32) string {
	if m >= 0 && int(m) < len(moveNames) {
		return moveNames[m]
	}
	return "?"
}

type screen int

const (
	screenGames screen = iota
	screenTurns
)

type model struct {
	archive *Archive

	screen screen
	games  []GameSummary
	cursor int

	gameID string
	turns  []TurnView
	turn   int

	err error
}

type turnsLoadedMsg struct {
	gameID string
	turns  []TurnView
	err    error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) loadTurns(gameID string) tea.Cmd {
	return func() tea.Msg {
		turns, err := m.archive.Turns(context.Background(), gameID)
		return turnsLoadedMsg{gameID: gameID, turns: turns, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case turnsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.screen = screenTurns
		m.gameID = msg.gameID
		m.turns = msg.turns
		m.turn = 0
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.screen == screenGames && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.screen == screenGames && m.cursor < len(m.games)-1 {
				m.cursor++
			}
		case "enter":
			if m.screen == screenGames && len(m.games) > 0 {
				return m, m.loadTurns(m.games[m.cursor].GameID)
			}
		case "left", "h":
			if m.screen == screenTurns && m.turn > 0 {
				m.turn--
			}
		case "right", "l":
			if m.screen == screenTurns && m.turn < len(m.turns)-1 {
				m.turn++
			}
		case "home":
			if m.screen == screenTurns {
				m.turn = 0
			}
		case "end":
			if m.screen == screenTurns {
				m.turn = len(m.turns) - 1
			}
		case "esc":
			if m.screen == screenTurns {
				m.screen = screenGames
				m.turns = nil
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n\nPress q to quit.\n", m.err)
	}
	if m.screen == screenTurns {
		return m.viewTurns()
	}
	return m.viewGames()
}

func (m model) viewGames() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Archived games (%d)\n\n", len(m.games)))

	// Keep the cursor visible in a window of 20 rows.
	start := 0
	if m.cursor > 19 {
		start = m.cursor - 19
	}
	end := start + 20
	if end > len(m.games) {
		end = len(m.games)
	}

	for i := start; i < end; i++ {
		g := m.games[i]
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%-40s %-11s %-8s %3dx%-3d %4d turns\n",
			marker, g.GameID, g.Ruleset, g.Source, g.Width, g.Height, g.Turns))
	}

	sb.WriteString("\nenter: view  q: quit\n")
	return sb.String()
}

func (m model) viewTurns() string {
	if len(m.turns) == 0 {
		return "no turns for " + m.gameID + "\n\nesc: back  q: quit\n"
	}
	t := m.turns[m.turn]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s  turn %d/%d\n\n", m.gameID, t.Turn, m.turns[len(m.turns)-1].Turn))
	sb.WriteString(renderBoard(t))
	sb.WriteString("\n")

	for i, s := range t.Snakes {
		status := "alive"
		if !s.Alive {
			status = "dead"
		}
		sb.WriteString(fmt.Sprintf("%c %-20s %-5s health=%-3d length=%-3d move=%s\n",
			'A'+i%26, s.ID, status, s.Health, len(s.Body), moveLabel(s.Move)))
	}

	if t.DeciderID != "" {
		sb.WriteString(fmt.Sprintf("\ndecision: %s -> %s (layer=%s score=%d latency=%dms)\n",
			t.DeciderID, moveLabel(t.Move), t.Layer, t.Score, t.LatencyMS))
	}

	sb.WriteString("\nleft/right: step  home/end: jump  esc: back  q: quit\n")
	return sb.String()
}

// renderBoard draws the turn as an ASCII grid, row 0 at the bottom.
func renderBoard(t TurnView) string {
	if t.Width <= 0 || t.Height <= 0 {
		return "(no board dimensions)\n"
	}
	grid := make([][]byte, t.Height)
	for y := range grid {
		grid[y] = make([]byte, t.Width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}

	set := func(p Point, c byte) {
		if p.X >= 0 && p.X < t.Width && p.Y >= 0 && p.Y < t.Height {
			grid[p.Y][p.X] = c
		}
	}

	for _, f := range t.Food {
		set(f, 'F')
	}
	for i, s := range t.Snakes {
		if !s.Alive {
			continue
		}
		head := byte('A' + i%26)
		body := byte('a' + i%26)
		for j, p := range s.Body {
			if j == 0 {
				set(p, head)
			} else {
				set(p, body)
			}
		}
	}

	var sb strings.Builder
	for y := int(t.Height) - 1; y >= 0; y-- {
		for x := int32(0); x < t.Width; x++ {
			sb.WriteByte(grid[y][x])
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	roots := fs.String("roots", "data", "Comma-separated archive directories")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	archive, err := OpenArchive(strings.Split(*roots, ","))
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	games, err := archive.Games(context.Background())
	if err != nil {
		log.Fatalf("list games: %v", err)
	}
	if len(games) == 0 {
		log.Fatalf("no games found under %s", *roots)
	}

	p := tea.NewProgram(model{archive: archive, games: games}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("viewer: %v", err)
	}
}
