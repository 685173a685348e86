// Package engine makes the per-turn decision: it scores states, predicts
// opponent moves, searches ahead, and falls back through cheaper layers when
// the search cannot help.
package engine

import "time"

// Ruleset is the closed set of game modes the engine knows about. The request
// string is parsed once at the edge; everything past that point switches on
// the enum.
type Ruleset int

const (
	RulesetStandard Ruleset = iota
	RulesetSolo
	RulesetRoyale
	RulesetSquad
	RulesetConstrictor
	RulesetWrapped
)

// ParseRuleset maps a ruleset name to its variant. Unknown names fall back to
// standard.
func ParseRuleset(name string) Ruleset {
	switch name {
	case "solo":
		return RulesetSolo
	case "royale":
		return RulesetRoyale
	case "squad":
		return RulesetSquad
	case "constrictor":
		return RulesetConstrictor
	case "wrapped":
		return RulesetWrapped
	}
	return RulesetStandard
}

func (r Ruleset) String() string {
	switch r {
	case RulesetSolo:
		return "solo"
	case RulesetRoyale:
		return "royale"
	case RulesetSquad:
		return "squad"
	case RulesetConstrictor:
		return "constrictor"
	case RulesetWrapped:
		return "wrapped"
	}
	return "standard"
}

// FoodThreshold is the health level below which the decision pipeline starts
// seeking food for this ruleset.
func (r Ruleset) FoodThreshold() int32 {
	switch r {
	case RulesetConstrictor:
		return 15
	case RulesetRoyale:
		return 60
	}
	return 50
}

const (
	DefaultSearchDepth = 4
	DefaultDeadline    = 400 * time.Millisecond
)

// Config carries everything one decision needs. Callers build it per request;
// nothing in the engine reads globals or the environment.
type Config struct {
	Ruleset       Ruleset
	SearchDepth   int
	FoodThreshold int32
	Deadline      time.Duration
}

// NewConfig returns the default configuration for a ruleset.
func NewConfig(r Ruleset) Config {
	return Config{
		Ruleset:       r,
		SearchDepth:   DefaultSearchDepth,
		FoodThreshold: r.FoodThreshold(),
		Deadline:      DefaultDeadline,
	}
}
