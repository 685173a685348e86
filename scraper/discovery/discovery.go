// Package discovery finds recently played game ids by crawling the public
// leaderboards and each ranked player's stats page.
package discovery

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type Config struct {
	LeaderboardURLs []string
	RequestDelay    time.Duration
	MaxPlayers      int // per leaderboard, 0 = unlimited
}

func DefaultConfig() Config {
	return Config{
		LeaderboardURLs: []string{
			"https://play.battlesnake.com/leaderboard/standard",
			"https://play.battlesnake.com/leaderboard/standard-duels",
		},
		RequestDelay: 500 * time.Millisecond,
		MaxPlayers:   100,
	}
}

var (
	gameIDRe = regexp.MustCompile(`/game/([a-f0-9-]+)`)
	// Player stats pages live at /leaderboard/{arena}/{username}/stats.
	playerRe = regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`)
	arenaRe  = regexp.MustCompile(`/leaderboard/([^/]+)/?$`)
)

// Worker crawls leaderboards and emits game ids not yet seen.
type Worker struct {
	config Config
	client *http.Client
	known  map[string]bool
}

// NewWorker takes ownership of existingIDs as the dedupe set.
func NewWorker(config Config, existingIDs map[string]bool) *Worker {
	if existingIDs == nil {
		existingIDs = make(map[string]bool)
	}
	return &Worker{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		known:  existingIDs,
	}
}

// Discover walks every configured leaderboard and sends unseen game ids to
// gameIDChan. The caller owns the channel; Discover never closes it.
func (w *Worker) Discover(gameIDChan chan<- string) error {
	total := 0

	for _, leaderboardURL := range w.config.LeaderboardURLs {
		players, arena, err := w.leaderboardPlayers(leaderboardURL)
		if err != nil {
			log.Printf("[discovery] leaderboard %s: %v", leaderboardURL, err)
			continue
		}
		if w.config.MaxPlayers > 0 && len(players) > w.config.MaxPlayers {
			players = players[:w.config.MaxPlayers]
		}
		log.Printf("[discovery] %s: checking %d players", arena, len(players))

		for i, p := range players {
			gameIDs, err := w.playerGames(p.statsURL)
			if err != nil {
				log.Printf("[discovery] player %s: %v", p.username, err)
				continue
			}
			for _, id := range gameIDs {
				if w.known[id] {
					continue
				}
				w.known[id] = true
				gameIDChan <- id
				total++
			}

			if (i+1)%25 == 0 {
				log.Printf("[discovery] %s: %d/%d players, %d new games so far", arena, i+1, len(players), total)
			}
			time.Sleep(w.config.RequestDelay)
		}
	}

	log.Printf("[discovery] done, %d new games", total)
	return nil
}

type playerInfo struct {
	username string
	statsURL string
}

func (w *Worker) leaderboardPlayers(leaderboardURL string) ([]playerInfo, string, error) {
	doc, err := w.fetch(leaderboardURL)
	if err != nil {
		return nil, "", err
	}

	arena := "unknown"
	if m := arenaRe.FindStringSubmatch(leaderboardURL); len(m) >= 2 {
		arena = m[1]
	}

	var players []playerInfo
	seen := make(map[string]bool)
	doc.Find("a[href*='/leaderboard/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := playerRe.FindStringSubmatch(href)
		if len(m) < 2 || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		players = append(players, playerInfo{
			username: m[1],
			statsURL: "https://play.battlesnake.com" + href,
		})
	})

	return players, arena, nil
}

func (w *Worker) playerGames(statsURL string) ([]string, error) {
	doc, err := w.fetch(statsURL)
	if err != nil {
		return nil, err
	}

	var gameIDs []string
	seen := make(map[string]bool)
	doc.Find("a[href*='/game/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := gameIDRe.FindStringSubmatch(href)
		if len(m) < 2 || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		gameIDs = append(gameIDs, m[1])
	})

	return gameIDs, nil
}

func (w *Worker) fetch(url string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "battlesnake-rst-scraper/1.0 (archive-collector)")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
