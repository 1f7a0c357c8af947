package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMoveFromAPIParsesSquaresAndPromotion(t *testing.T) {
	move, ok := moveFromAPI(apiMove{From: "e2", To: "e4"})
	if !ok {
		t.Fatalf("expected e2e4 to parse")
	}
	if move.From != (Square{Row: 6, Col: 4}) || move.To != (Square{Row: 4, Col: 4}) {
		t.Fatalf("unexpected squares: %+v", move)
	}

	move, ok = moveFromAPI(apiMove{From: "a7", To: "a8", Promotion: "n"})
	if !ok || move.Promotion != Knight {
		t.Fatalf("expected a knight promotion, got %+v (ok=%v)", move, ok)
	}

	if _, ok := moveFromAPI(apiMove{From: "z9", To: "e4"}); ok {
		t.Fatalf("expected an invalid square to fail")
	}
	if _, ok := moveFromAPI(apiMove{From: "a7", To: "a8", Promotion: "king"}); ok {
		t.Fatalf("expected an invalid promotion to fail")
	}
}

func TestSettingsDTORoundTrip(t *testing.T) {
	dto := GameSettingsDTO{Mode: "human_vs_ai", HumanColor: "black", Difficulty: "hard"}
	settings := settingsFromDTO(dto, DefaultGameSettings())
	if settings.WhiteType != PlayerAI || settings.BlackType != PlayerHuman {
		t.Fatalf("expected white AI / black human, got %+v", settings)
	}
	if settings.Difficulty != "hard" {
		t.Fatalf("expected hard difficulty, got %q", settings.Difficulty)
	}

	back := controllerSettingsDTO(settings)
	if back.Mode != "human_vs_ai" || back.HumanColor != "black" || back.Difficulty != "hard" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestBoardToSliceUsesPieceTags(t *testing.T) {
	board := NewBoard()
	rows := boardToSlice(board)
	if rows[0][4] != "bk" || rows[7][4] != "wk" {
		t.Fatalf("expected kings at e8/e1, got %q and %q", rows[0][4], rows[7][4])
	}
	if rows[6][0] != "wp" || rows[1][7] != "bp" {
		t.Fatalf("expected pawn tags, got %q and %q", rows[6][0], rows[1][7])
	}
	if rows[4][4] != "" {
		t.Fatalf("expected an empty tag for e4, got %q", rows[4][4])
	}
}

func TestStatusToStringCoversAllStatuses(t *testing.T) {
	cases := map[GameStatus]string{
		StatusNotStarted:    "not_started",
		StatusRunning:       "running",
		StatusWhiteWon:      "white_won",
		StatusBlackWon:      "black_won",
		StatusStalemate:     "stalemate",
		StatusFiftyMoveDraw: "fifty_move_draw",
	}
	for status, want := range cases {
		if got := statusToString(status); got != want {
			t.Fatalf("status %d: expected %q, got %q", status, want, got)
		}
	}
}

func TestDepthForDifficultyTiers(t *testing.T) {
	if DepthForDifficulty("easy") != 2 || DepthForDifficulty("normal") != 3 || DepthForDifficulty("hard") != 4 {
		t.Fatalf("unexpected difficulty depths")
	}
	if DepthForDifficulty("unknown") != GetConfig().AiDepth {
		t.Fatalf("expected the configured default for unknown tiers")
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	controller := NewGameController(humanVsHumanSettings())
	hub := NewHub()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go hub.Run(done)
	srv := httptest.NewServer(newRouter(controller, hub))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeStatus(t *testing.T, resp *http.Response) StatusResponse {
	t.Helper()
	defer resp.Body.Close()
	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return status
}

func TestPingEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/ping")
	if err != nil {
		t.Fatalf("GET /api/ping: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode ping: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("expected ok=true, got %v", body)
	}
}

func TestStartMoveAndStatusFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/start", map[string]any{
		"settings": GameSettingsDTO{Mode: "human_vs_human"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/move", apiMove{From: "e2", To: "e4"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	statusResp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	status := decodeStatus(t, statusResp)
	if status.NextPlayer != "black" {
		t.Fatalf("expected black to move, got %q", status.NextPlayer)
	}
	if status.EnPassant != "e3" {
		t.Fatalf("expected en-passant target e3, got %q", status.EnPassant)
	}
	if !status.WhiteCastling.KingSide || !status.BlackCastling.QueenSide {
		t.Fatalf("expected untouched castling rights, got %+v / %+v", status.WhiteCastling, status.BlackCastling)
	}
	if len(status.History) != 1 || status.History[0].Notation != "e4" {
		t.Fatalf("unexpected history: %+v", status.History)
	}
}

func TestMoveEndpointRejectsIllegalMove(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/start", map[string]any{
		"settings": GameSettingsDTO{Mode: "human_vs_human"},
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/move", apiMove{From: "e2", To: "e5"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for e2e5, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected an error message")
	}
}

func TestLegalMovesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/moves?square=zz")
	if err != nil {
		t.Fatalf("GET /api/moves: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad square, got %d", resp.StatusCode)
	}

	startResp := postJSON(t, srv.URL+"/api/start", map[string]any{
		"settings": GameSettingsDTO{Mode: "human_vs_human"},
	})
	startResp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/moves?square=e2")
	if err != nil {
		t.Fatalf("GET /api/moves: %v", err)
	}
	defer resp.Body.Close()
	var payload legalMovesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode moves: %v", err)
	}
	if payload.Square != "e2" || len(payload.Moves) != 2 {
		t.Fatalf("expected two pawn moves from e2, got %+v", payload)
	}
}

func TestUndoEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/start", map[string]any{
		"settings": GameSettingsDTO{Mode: "human_vs_human"},
	})
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/move", apiMove{From: "e2", To: "e4"})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/undo", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("undo: expected 200, got %d", resp.StatusCode)
	}
	status := decodeStatus(t, resp)
	if status.NextPlayer != "white" || len(status.History) != 0 {
		t.Fatalf("expected the initial position back, got %+v", status)
	}

	resp = postJSON(t, srv.URL+"/api/undo", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 when nothing is left to undo, got %d", resp.StatusCode)
	}
}

func TestSettingsEndpointMergesPartialConfig(t *testing.T) {
	prevCfg := GetConfig()
	defer configStore.Update(prevCfg)
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/settings", map[string]any{
		"config": map[string]any{"ai_seed": 42},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d", resp.StatusCode)
	}

	cfg := GetConfig()
	if cfg.AiSeed != 42 {
		t.Fatalf("expected ai_seed 42, got %d", cfg.AiSeed)
	}
	if cfg.UndoHistoryLimit != prevCfg.UndoHistoryLimit || cfg.TickIntervalMs != prevCfg.TickIntervalMs {
		t.Fatalf("partial config update clobbered other fields: %+v", cfg)
	}
}

func TestHubHasClients(t *testing.T) {
	hub := NewHub()
	if hub.HasClients() {
		t.Fatalf("expected a fresh hub to have no clients")
	}
	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(client)
	if !hub.HasClients() {
		t.Fatalf("expected a registered client to be counted")
	}
	hub.Unregister(client)
	if hub.HasClients() {
		t.Fatalf("expected no clients after unregister")
	}
}
