package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/TerminalGravity/battlesnake-rst/game"
)

// FoodSettings matches the common Battlesnake server knobs:
// - MinimumFood: ensure at least this many food items exist after each turn
// - FoodSpawnChance: percentage chance (0-100) to spawn one extra food each turn
//
// Engine defaults are MinimumFood=1 and FoodSpawnChance=15.
//
// The RNG parameter lets callers choose true randomness for match simulation
// or deterministic pseudo-randomness for tests. Food spawning is deliberately
// kept out of NextStateSimultaneous: the search engine explores futures with
// the pure transition only.
type FoodSettings struct {
	MinimumFood     int
	FoodSpawnChance int
}

var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

// NextStateSimultaneousWithFood advances the board one turn and then applies
// food spawning. Used by the self-play runner; the search never spawns food.
func NextStateSimultaneousWithFood(state *game.GameState, moves map[string]int, rng *rand.Rand, settings FoodSettings) *game.GameState {
	next := NextStateSimultaneous(state, moves)
	applyFoodRules(next, rng, settings, 0x464F4F445F54524E) // "FOOD_TRN" salt
	return next
}

// ApplyFoodSettings applies food spawning to an existing state. Useful for
// initialization (ensure MinimumFood at game start).
func ApplyFoodSettings(state *game.GameState, rng *rand.Rand, settings FoodSettings) {
	applyFoodRules(state, rng, settings, 0x464F4F445F494E49) // "FOOD_INI" salt
}

func applyFoodRules(state *game.GameState, rng *rand.Rand, settings FoodSettings, salt uint64) {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return
	}
	if settings.MinimumFood < 0 {
		settings.MinimumFood = 0
	}
	if settings.FoodSpawnChance < 0 {
		settings.FoodSpawnChance = 0
	}
	if settings.FoodSpawnChance > 100 {
		settings.FoodSpawnChance = 100
	}

	// Decide whether we will spawn anything before doing expensive work.
	deficit := settings.MinimumFood - len(state.Food)
	if deficit < 0 {
		deficit = 0
	}

	spawnExtra := false
	if settings.FoodSpawnChance > 0 {
		if rng != nil {
			spawnExtra = rng.Intn(100) < settings.FoodSpawnChance
		} else {
			spawnExtra = int(stateHash(state, salt)%100) < settings.FoodSpawnChance
		}
	}

	if deficit == 0 && !spawnExtra {
		return
	}

	if rng == nil {
		seed := int64(stateHash(state, salt))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}

	occupied := make(map[game.Point]struct{}, int(state.Width*state.Height))
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 {
			continue
		}
		for _, p := range s.Body {
			occupied[p] = struct{}{}
		}
	}
	for _, f := range state.Food {
		occupied[f] = struct{}{}
	}

	available := make([]game.Point, 0, int(state.Width*state.Height))
	for y := int32(0); y < state.Height; y++ {
		for x := int32(0); x < state.Width; x++ {
			p := game.Point{X: x, Y: y}
			if _, ok := occupied[p]; ok {
				continue
			}
			available = append(available, p)
		}
	}

	spawnOne := func() {
		if len(available) == 0 {
			return
		}
		i := rng.Intn(len(available))
		state.Food = append(state.Food, available[i])
		available[i] = available[len(available)-1]
		available = available[:len(available)-1]
	}

	for ; deficit > 0; deficit-- {
		spawnOne()
		if len(available) == 0 {
			break
		}
	}
	if spawnExtra {
		spawnOne()
	}
}

// stateHash is an intentionally cheap deterministic hash of the parts of the
// state that change every turn: board size, turn, food count, and head cells.
func stateHash(state *game.GameState, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(state.Width))|(uint64(uint32(state.Height))<<32))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(state.Turn)))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(len(state.Food)))
	_, _ = h.Write(buf[:])

	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		_, _ = h.Write([]byte(s.Id))
		head := s.Head()
		binary.LittleEndian.PutUint64(buf[:], (uint64(uint32(head.X))<<32)|uint64(uint32(head.Y)))
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}
