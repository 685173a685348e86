// Package game defines the core board state types for the decision engine.
//
// These types are passive data: geometry lives here, rules live in the rules
// package. The state is designed to be cheaply clonable so the search engine
// can explore futures without mutating shared state or aliasing across tree
// branches.
package game

// Point is a board coordinate.
// Coordinates follow Battlesnake conventions: (0,0) is bottom-left.
type Point struct {
	X int32
	Y int32
}

// Snake is one competitor. Body is ordered head-first, tail-last; a live
// snake's body is never empty and Body[0] is its head.
type Snake struct {
	Id     string
	Health int32
	Body   []Point
}

// Head returns the snake's head cell. Only valid for live snakes.
func (s *Snake) Head() Point {
	return s.Body[0]
}

// Length is the number of body segments, including stacked spawn segments.
func (s *Snake) Length() int {
	return len(s.Body)
}

// GameState is a complete board snapshot for one turn.
// YouId selects the perspective snake for the decision pipeline.
type GameState struct {
	Width  int32
	Height int32
	Snakes []Snake
	Food   []Point
	YouId  string
	Turn   int32
}

// SnakeByID returns a pointer into Snakes for the given id, or nil.
func (s *GameState) SnakeByID(id string) *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == id {
			return &s.Snakes[i]
		}
	}
	return nil
}

// InBounds reports whether p lies inside the board rectangle.
func (s *GameState) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		Width:  s.Width,
		Height: s.Height,
		YouId:  s.YouId,
		Turn:   s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			out.Snakes[i] = Snake{Id: s.Snakes[i].Id, Health: s.Snakes[i].Health}
			if len(s.Snakes[i].Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(s.Snakes[i].Body))
				copy(out.Snakes[i].Body, s.Snakes[i].Body)
			}
		}
	}

	return out
}
