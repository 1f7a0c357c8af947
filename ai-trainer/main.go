package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// arena drives AI-vs-AI games over the backend HTTP API and tallies
// outcomes per difficulty tier.
type arena struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	logger       *log.Logger
	gamesPerTier int
	maxGameTime  time.Duration
}

type statusResponse struct {
	Status         string            `json:"status"`
	Winner         string            `json:"winner"`
	FullmoveNumber int               `json:"fullmove_number"`
	History        []json.RawMessage `json:"history"`
}

type tierResult struct {
	Difficulty string
	Games      int
	WhiteWins  int
	BlackWins  int
	Stalemates int
	FiftyMove  int
	Aborted    int
	TotalMoves int
	Elapsed    time.Duration
}

func main() {
	baseURL := flag.String("backend", "http://localhost:8080", "backend base URL")
	games := flag.Int("games", 10, "games per difficulty tier")
	pollMs := flag.Int("poll-ms", 200, "status poll interval in milliseconds")
	maxGameMin := flag.Int("max-game-min", 10, "abort a game after this many minutes")
	flag.Parse()

	logger := log.New(os.Stdout, "[arena] ", log.LstdFlags)
	a := &arena{
		client:       &http.Client{Timeout: 10 * time.Second},
		baseURL:      *baseURL,
		pollInterval: time.Duration(*pollMs) * time.Millisecond,
		logger:       logger,
		gamesPerTier: *games,
		maxGameTime:  time.Duration(*maxGameMin) * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.waitBackendReady(ctx); err != nil {
		logger.Fatalf("backend not reachable: %v", err)
	}

	tiers := []string{"easy", "normal", "hard"}
	results := make([]tierResult, 0, len(tiers))
	for _, tier := range tiers {
		result, err := a.runTier(ctx, tier)
		if err != nil {
			logger.Printf("tier %s aborted: %v", tier, err)
			break
		}
		results = append(results, result)
	}

	for _, result := range results {
		avgMoves := 0.0
		if result.Games > 0 {
			avgMoves = float64(result.TotalMoves) / float64(result.Games)
		}
		logger.Printf("tier=%s games=%d white=%d black=%d stalemate=%d fifty=%d aborted=%d avg_moves=%.1f t=%s",
			result.Difficulty, result.Games, result.WhiteWins, result.BlackWins,
			result.Stalemates, result.FiftyMove, result.Aborted, avgMoves,
			result.Elapsed.Round(time.Second))
	}
}

func (a *arena) runTier(ctx context.Context, difficulty string) (tierResult, error) {
	result := tierResult{Difficulty: difficulty}
	start := time.Now()
	for i := 0; i < a.gamesPerTier; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		a.logger.Printf("tier=%s game=%d/%d starting", difficulty, i+1, a.gamesPerTier)
		final, err := a.playGame(ctx, difficulty)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			a.logger.Printf("tier=%s game=%d error: %v", difficulty, i+1, err)
			result.Aborted++
			continue
		}
		result.Games++
		result.TotalMoves += len(final.History)
		switch final.Status {
		case "white_won":
			result.WhiteWins++
		case "black_won":
			result.BlackWins++
		case "stalemate":
			result.Stalemates++
		case "fifty_move_draw":
			result.FiftyMove++
		default:
			result.Aborted++
		}
		a.logger.Printf("tier=%s game=%d result=%s moves=%d", difficulty, i+1, final.Status, len(final.History))
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

func (a *arena) playGame(ctx context.Context, difficulty string) (statusResponse, error) {
	if err := a.startGame(difficulty); err != nil {
		return statusResponse{}, err
	}
	deadline := time.Now().Add(a.maxGameTime)
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = a.stopGame()
			return statusResponse{}, ctx.Err()
		case <-ticker.C:
			status, err := a.fetchStatus()
			if err != nil {
				return statusResponse{}, err
			}
			if status.Status != "running" && status.Status != "not_started" {
				return status, nil
			}
			if time.Now().After(deadline) {
				_ = a.stopGame()
				return statusResponse{}, fmt.Errorf("game exceeded %s", a.maxGameTime)
			}
		}
	}
}

func (a *arena) startGame(difficulty string) error {
	payload := map[string]any{
		"settings": map[string]any{
			"mode":       "ai_vs_ai",
			"difficulty": difficulty,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := a.client.Post(a.baseURL+"/api/start", "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("start returned %d", resp.StatusCode)
	}
	return nil
}

func (a *arena) stopGame() error {
	resp, err := a.client.Post(a.baseURL+"/api/stop", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (a *arena) fetchStatus() (statusResponse, error) {
	resp, err := a.client.Get(a.baseURL + "/api/status")
	if err != nil {
		return statusResponse{}, err
	}
	defer resp.Body.Close()
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}

func (a *arena) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		if err := a.ping(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("timed out waiting for backend")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (a *arena) ping() error {
	resp, err := a.client.Get(a.baseURL + "/api/ping")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping returned %d", resp.StatusCode)
	}
	return nil
}
