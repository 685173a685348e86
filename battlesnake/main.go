// Package main implements the Battlesnake API server.
//
// Each /move request is converted to a game state and decided by the layered
// engine pipeline within the per-turn time budget. Decisions can optionally be
// archived to parquet for the viewer and offline analysis.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/TerminalGravity/battlesnake-rst/engine"
	"github.com/TerminalGravity/battlesnake-rst/game"
	"github.com/TerminalGravity/battlesnake-rst/rules"
	"github.com/TerminalGravity/battlesnake-rst/store"
)

// Battlesnake API request/response types

type BattlesnakeInfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Color      string `json:"color"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
	Version    string `json:"version"`
}

type GameRequest struct {
	Game  Game        `json:"game"`
	Turn  int         `json:"turn"`
	Board Board       `json:"board"`
	You   Battlesnake `json:"you"`
}

type Game struct {
	ID      string  `json:"id"`
	Ruleset Ruleset `json:"ruleset"`
	Map     string  `json:"map"`
	Timeout int     `json:"timeout"`
	Source  string  `json:"source"`
}

type Ruleset struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings RulesetSettings `json:"settings"`
}

type RulesetSettings struct {
	FoodSpawnChance     int `json:"foodSpawnChance"`
	MinimumFood         int `json:"minimumFood"`
	HazardDamagePerTurn int `json:"hazardDamagePerTurn"`
}

type Board struct {
	Height  int           `json:"height"`
	Width   int           `json:"width"`
	Food    []Coord       `json:"food"`
	Hazards []Coord       `json:"hazards"`
	Snakes  []Battlesnake `json:"snakes"`
}

type Battlesnake struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Health         int     `json:"health"`
	Body           []Coord `json:"body"`
	Latency        string  `json:"latency"`
	Head           Coord   `json:"head"`
	Length         int     `json:"length"`
	Shout          string  `json:"shout"`
	Squad          string  `json:"squad"`
	Customizations struct {
		Color string `json:"color"`
		Head  string `json:"head"`
		Tail  string `json:"tail"`
	} `json:"customizations"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type MoveResponse struct {
	Move  string `json:"move"`
	Shout string `json:"shout,omitempty"`
}

// fallbackDirection answers a request when no safe move exists; the engine
// has already concluded the snake dies, so any legal token works.
const fallbackDirection = "down"

// Server holds the decision configuration shared by all requests.
type Server struct {
	forceRuleset  string
	searchDepth   int
	foodThreshold int
	deadline      time.Duration

	archive *archiver
}

// handleIndex returns the Battlesnake info.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	response := BattlesnakeInfoResponse{
		APIVersion: "1",
		Author:     "battlesnake-rst",
		Color:      "#af1020",
		Head:       "sand-worm",
		Tail:       "bolt",
		Version:    "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleStart is called when a game starts.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("Game started: %s, Ruleset: %s, You: %s", req.Game.ID, req.Game.Ruleset.Name, req.You.Name)
	w.WriteHeader(http.StatusOK)
}

// handleMove decides one turn.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := convertToGameState(&req)
	cfg := s.buildConfig(&req)

	moveStr := fallbackDirection
	decision, err := engine.Decide(state, cfg)
	switch {
	case err == nil:
		moveStr = rules.MoveName(decision.Move)
	case errors.Is(err, engine.ErrNoSafeMoves):
		log.Printf("Game %s turn %d: no safe moves, answering %s", req.Game.ID, req.Turn, fallbackDirection)
	default:
		log.Printf("Game %s turn %d: decide error: %v", req.Game.ID, req.Turn, err)
	}

	elapsed := time.Since(startTime)
	log.Printf("Turn %d: Move=%s, Layer=%s, Time=%v", req.Turn, moveStr, decision.Layer, elapsed)

	if s.archive != nil {
		row := store.NewTurnRow(req.Game.ID, state, cfg.Ruleset.String(), "server")
		row.DeciderID = req.You.ID
		row.Layer = decision.Layer
		row.Score = int32(decision.Score)
		row.LatencyMS = int32(elapsed.Milliseconds())
		if err == nil {
			row.Move = int32(decision.Move)
		}
		s.archive.record(row)
	}

	response := MoveResponse{Move: moveStr}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleEnd is called when a game ends.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	youAlive := false
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			youAlive = true
			break
		}
	}

	result := "lost"
	if youAlive {
		result = "won"
	} else if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	log.Printf("Game ended: %s, Turn: %d, Result: %s", req.Game.ID, req.Turn, result)

	if s.archive != nil {
		s.archive.gameDone(req.Game.ID)
	}
	w.WriteHeader(http.StatusOK)
}

// buildConfig derives the decision configuration for one request: ruleset
// from the request (unless forced by flag), flag overrides for threshold and
// depth, and a deadline from the game timeout minus a response buffer.
func (s *Server) buildConfig(req *GameRequest) engine.Config {
	name := req.Game.Ruleset.Name
	if s.forceRuleset != "" {
		name = s.forceRuleset
	}
	cfg := engine.NewConfig(engine.ParseRuleset(name))

	if s.searchDepth > 0 {
		cfg.SearchDepth = s.searchDepth
	}
	if s.foodThreshold > 0 {
		cfg.FoodThreshold = int32(s.foodThreshold)
	}

	deadline := s.deadline
	if req.Game.Timeout > 0 {
		// Reserve time for JSON encoding and network latency.
		deadline = time.Duration(req.Game.Timeout)*time.Millisecond - 100*time.Millisecond
	}
	if deadline < 50*time.Millisecond {
		deadline = 50 * time.Millisecond
	}
	cfg.Deadline = deadline
	return cfg
}

// convertToGameState converts a Battlesnake API request to our game state.
func convertToGameState(req *GameRequest) *game.GameState {
	state := &game.GameState{
		Width:  int32(req.Board.Width),
		Height: int32(req.Board.Height),
		YouId:  req.You.ID,
		Turn:   int32(req.Turn),
	}

	state.Food = make([]game.Point, len(req.Board.Food))
	for i, f := range req.Board.Food {
		state.Food[i] = game.Point{X: int32(f.X), Y: int32(f.Y)}
	}

	state.Snakes = make([]game.Snake, len(req.Board.Snakes))
	for i, s := range req.Board.Snakes {
		snake := game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   make([]game.Point, len(s.Body)),
		}
		for j, b := range s.Body {
			snake.Body[j] = game.Point{X: int32(b.X), Y: int32(b.Y)}
		}
		state.Snakes[i] = snake
	}

	return state
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", ":8080", "HTTP listen address")
	forceRuleset := fs.String("force-ruleset", "", "Override the ruleset reported by the server (standard, solo, royale, squad, constrictor, wrapped)")
	searchDepth := fs.Int("search-depth", 0, "Override search depth (0 = ruleset default)")
	foodThreshold := fs.Int("food-threshold", 0, "Override the food-seek health threshold (0 = ruleset default)")
	deadline := fs.Duration("deadline", engine.DefaultDeadline, "Per-move deadline when the request carries no timeout")
	archiveDir := fs.String("archive-dir", "", "Directory for parquet decision archives (empty = disabled)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	server := &Server{
		forceRuleset:  *forceRuleset,
		searchDepth:   *searchDepth,
		foodThreshold: *foodThreshold,
		deadline:      *deadline,
	}

	if *archiveDir != "" {
		a, err := newArchiver(*archiveDir)
		if err != nil {
			log.Fatalf("archive setup: %v", err)
		}
		server.archive = a
		go a.loop()
		log.Printf("Archiving decisions to %s", *archiveDir)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", server.handleIndex)
	mux.HandleFunc("/start", server.handleStart)
	mux.HandleFunc("/move", server.handleMove)
	mux.HandleFunc("/end", server.handleEnd)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("Battlesnake server listening on http://%s", *listen)
	log.Fatal(srv.ListenAndServe())
}
