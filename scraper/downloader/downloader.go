// Package downloader streams finished games from the public engine websocket
// and converts their frames into archive turn rows.
package downloader

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TerminalGravity/battlesnake-rst/rules"
	"github.com/TerminalGravity/battlesnake-rst/store"
)

type Config struct {
	EngineURL      string // websocket URL template with one %s for the game id
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// GameEvent is one message from the websocket stream.
type GameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameInfo from the "game_info" event.
type GameInfo struct {
	Game    GameDetails `json:"game"`
	Ruleset RulesetInfo `json:"ruleset"`
}

type GameDetails struct {
	ID      string `json:"id"`
	Timeout int    `json:"timeout"`
}

type RulesetInfo struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings json.RawMessage `json:"settings"`
}

// FrameData from "frame" events.
type FrameData struct {
	Turn   int         `json:"turn"`
	Snakes []SnakeData `json:"snakes"`
	Food   []Coord     `json:"food"`
	Board  BoardData   `json:"board,omitempty"`
}

type SnakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Body   []Coord `json:"body"`
	Death  *Death  `json:"death,omitempty"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type BoardData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

// DownloadGame streams every frame of a finished game. It tolerates an
// abrupt close once at least some frames arrived.
func DownloadGame(gameID string, cfg Config) (GameInfo, []FrameData, error) {
	url := fmt.Sprintf(cfg.EngineURL, gameID)

	dialer := websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return GameInfo{}, nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	var info GameInfo
	var frames []FrameData

	for {
		conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			if len(frames) > 0 {
				break
			}
			return GameInfo{}, nil, fmt.Errorf("read: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("skipping unparseable event for %s: %v", gameID, err)
			continue
		}

		switch event.Type {
		case "game_info":
			if err := json.Unmarshal(event.Data, &info); err != nil {
				log.Printf("bad game_info for %s: %v", gameID, err)
			}
		case "frame":
			var frame FrameData
			if err := json.Unmarshal(event.Data, &frame); err != nil {
				log.Printf("bad frame for %s: %v", gameID, err)
				continue
			}
			frames = append(frames, frame)
		case "game_end":
			return info, frames, nil
		}
	}

	return info, frames, nil
}

// BuildTurnRows converts downloaded frames into archive rows. Each snake's
// move on a turn is inferred from its head position on the next frame;
// moves on the final frame stay unknown.
func BuildTurnRows(gameID string, info GameInfo, frames []FrameData) []store.TurnRow {
	rows := make([]store.TurnRow, 0, len(frames))

	for i, frame := range frames {
		row := store.TurnRow{
			GameID:  gameID,
			Turn:    int32(frame.Turn),
			Width:   int32(frame.Board.Width),
			Height:  int32(frame.Board.Height),
			Ruleset: info.Ruleset.Name,
			Source:  "scraper",
			Move:    store.MoveUnknown,
		}
		for _, f := range frame.Food {
			row.FoodX = append(row.FoodX, int32(f.X))
			row.FoodY = append(row.FoodY, int32(f.Y))
		}

		var next *FrameData
		if i+1 < len(frames) {
			next = &frames[i+1]
		}

		for _, s := range frame.Snakes {
			ts := store.TurnSnake{
				ID:     s.ID,
				Alive:  s.Death == nil && s.Health > 0,
				Health: int32(s.Health),
				Move:   store.MoveUnknown,
			}
			for _, p := range s.Body {
				ts.BodyX = append(ts.BodyX, int32(p.X))
				ts.BodyY = append(ts.BodyY, int32(p.Y))
			}
			if next != nil && len(s.Body) > 0 {
				ts.Move = inferMove(s.Body[0], next, s.ID)
			}
			row.Snakes = append(row.Snakes, ts)
		}

		rows = append(rows, row)
	}

	return rows
}

// inferMove derives the move a snake took from the head delta between two
// consecutive frames. Eliminated or teleported snakes stay unknown.
func inferMove(head Coord, next *FrameData, snakeID string) int32 {
	for _, s := range next.Snakes {
		if s.ID != snakeID || len(s.Body) == 0 {
			continue
		}
		dx := s.Body[0].X - head.X
		dy := s.Body[0].Y - head.Y
		switch {
		case dx == 0 && dy == 1:
			return int32(rules.MoveUp)
		case dx == 0 && dy == -1:
			return int32(rules.MoveDown)
		case dx == -1 && dy == 0:
			return int32(rules.MoveLeft)
		case dx == 1 && dy == 0:
			return int32(rules.MoveRight)
		}
		return store.MoveUnknown
	}
	return store.MoveUnknown
}
