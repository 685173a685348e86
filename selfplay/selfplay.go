// Package selfplay pits the decision engine against itself to produce
// archived games for the viewer and offline analysis.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/TerminalGravity/battlesnake-rst/engine"
	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
	"github.com/TerminalGravity/battlesnake-rst/store"
)

type GameResult struct {
	WinnerId string
	Steps    int
}

type Options struct {
	Width      int32
	Height     int32
	SnakeCount int
	MaxTurns   int
	Verbose    bool
	// Seed fixes the food RNG; 0 derives one from the clock and worker id.
	Seed int64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 11
	}
	if o.Height <= 0 {
		o.Height = 11
	}
	if o.SnakeCount < 2 {
		o.SnakeCount = 2
	}
	if o.SnakeCount > 4 {
		o.SnakeCount = 4
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = 1000
	}
	return o
}

// PlayGame plays one full game with every live snake deciding through the
// engine from its own perspective. Returns one TurnRow per turn plus a
// terminal row. Cancellation aborts the game and returns ctx's error.
func PlayGame(ctx context.Context, workerID int, cfg engine.Config, opts Options) ([]store.TurnRow, GameResult, error) {
	opts = opts.withDefaults()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() + int64(workerID)*1000003
	}
	rng := rand.New(rand.NewSource(seed))

	state := newInitialState(opts, rng)
	gameID := fmt.Sprintf("selfplay_%d_%d", time.Now().UnixNano(), workerID)
	rows := make([]store.TurnRow, 0, 256)

	for !rules.IsGameOver(state) && int(state.Turn) < opts.MaxTurns {
		select {
		case <-ctx.Done():
			return nil, GameResult{Steps: int(state.Turn)}, ctx.Err()
		default:
		}

		// Every snake decides against its own clone of the board. Decisions
		// are independent, so they run concurrently.
		moves := make(map[string]int)
		var movesMu sync.Mutex
		var wg sync.WaitGroup
		for i := range state.Snakes {
			s := &state.Snakes[i]
			if s.Health <= 0 {
				continue
			}
			wg.Add(1)
			go func(id string) {
				defer wg.Done()

				local := state.Clone()
				local.YouId = id
				d, err := engine.Decide(local, cfg)
				if err != nil {
					// Trapped: no move recorded, the transition's placeholder
					// step eliminates the snake.
					return
				}
				movesMu.Lock()
				moves[id] = d.Move
				movesMu.Unlock()
			}(s.Id)
		}
		wg.Wait()

		row := store.NewTurnRow(gameID, state, cfg.Ruleset.String(), "selfplay")
		for i := range row.Snakes {
			if m, ok := moves[row.Snakes[i].ID]; ok {
				row.Snakes[i].Move = int32(m)
			}
		}
		rows = append(rows, row)

		if opts.Verbose {
			PrintBoard(state)
		}

		state = rules.NextStateSimultaneousWithFood(state, moves, rng, rules.DefaultFoodSettings)
	}

	// Terminal snapshot, so completed games do not appear to stop in a
	// non-terminal position.
	rows = append(rows, store.NewTurnRow(gameID, state, cfg.Ruleset.String(), "selfplay"))

	winnerId := ""
	living := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			living++
			winnerId = state.Snakes[i].Id
		}
	}
	if living != 1 {
		winnerId = ""
	}

	return rows, GameResult{WinnerId: winnerId, Steps: int(state.Turn)}, nil
}

// newInitialState places stacked length-3 snakes in the corners and spawns
// the starting food, matching the common server setup.
func newInitialState(opts Options, rng *rand.Rand) *game.GameState {
	corners := []game.Point{
		{X: 1, Y: 1},
		{X: opts.Width - 2, Y: opts.Height - 2},
		{X: 1, Y: opts.Height - 2},
		{X: opts.Width - 2, Y: 1},
	}

	state := &game.GameState{
		Width:  opts.Width,
		Height: opts.Height,
		Turn:   0,
	}
	for i := 0; i < opts.SnakeCount; i++ {
		p := corners[i]
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     fmt.Sprintf("snake%d", i+1),
			Health: 100,
			Body:   []game.Point{p, p, p},
		})
	}
	state.YouId = state.Snakes[0].Id

	rules.ApplyFoodSettings(state, rng, rules.FoodSettings{MinimumFood: 1, FoodSpawnChance: 0})
	return state
}
