package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type StatusResponse struct {
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	Board           [][]string        `json:"board"`
	NextPlayer      string            `json:"next_player"`
	Winner          string            `json:"winner"`
	Status          string            `json:"status"`
	WhiteCheck      bool              `json:"white_check"`
	BlackCheck      bool              `json:"black_check"`
	CapturedByWhite []string          `json:"captured_by_white"`
	CapturedByBlack []string          `json:"captured_by_black"`
	WhiteScore      int               `json:"white_score"`
	BlackScore      int               `json:"black_score"`
	HalfmoveClock   int               `json:"halfmove_clock"`
	FullmoveNumber  int               `json:"fullmove_number"`
	WhiteCastling   CastlingRights    `json:"white_castling"`
	BlackCastling   CastlingRights    `json:"black_castling"`
	EnPassant       string            `json:"en_passant,omitempty"`
	LastMove        *moveDTO          `json:"last_move,omitempty"`
	AiThinking      bool              `json:"ai_thinking"`
	History         []historyEntryDTO `json:"history"`
}

type GameSettingsDTO struct {
	Mode       string `json:"mode"`
	HumanColor string `json:"human_color"`
	Difficulty string `json:"difficulty"`
}

type apiMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type moveDTO struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type historyEntryDTO struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Player    string  `json:"player"`
	Piece     string  `json:"piece"`
	Captured  string  `json:"captured,omitempty"`
	Notation  string  `json:"notation"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAi      bool    `json:"is_ai"`
	IsCastle  bool    `json:"is_castle"`
	IsCheck   bool    `json:"is_check"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	Board      [][]string        `json:"board"`
	NextPlayer string            `json:"next_player"`
	Winner     string            `json:"winner"`
	Status     string            `json:"status"`
	History    []historyEntryDTO `json:"history"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

type legalMovesResponse struct {
	Square string    `json:"square"`
	Moves  []moveDTO `json:"moves"`
}

func main() {
	controller := NewGameController(DefaultGameSettings())
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx.Done())
	go func() {
		interval := time.Duration(GetConfig().TickIntervalMs) * time.Millisecond
		if interval <= 0 {
			interval = 50 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() && hub.HasClients() {
					if entry, ok := controller.LatestHistoryEntry(); ok {
						hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}}
					}
					hub.broadcastBoard <- boardFromController(controller)
					hub.broadcastStatus <- controllerStatus(controller)
				}
			}
		}
	}()

	r := newRouter(controller, hub)

	server := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Println("backend listening on :8080")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[backend] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}

	cancel()
	if runErr != nil {
		log.Printf("[backend] exiting after server error: %v", runErr)
	}
}

func newRouter(controller *GameController, hub *Hub) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Get("/api/moves", func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("square")
		from, ok := SquareFromAlgebraic(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid square"})
			return
		}
		moves := controller.LegalMoves(from)
		writeJSON(w, http.StatusOK, legalMovesResponse{
			Square: from.Algebraic(),
			Moves:  movesToDTO(moves),
		})
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings())
		controller.StartGame(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		settings := controller.Settings()
		controller.Reset(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		move, ok := moveFromAPI(payload)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid move"})
			return
		}
		applied, errMsg := controller.ApplyHumanMove(move)
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		if entry, ok := controller.LatestHistoryEntry(); ok {
			hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}}
		}
		hub.broadcastBoard <- boardFromController(controller)
		hub.broadcastStatus <- controllerStatus(controller)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/undo", func(w http.ResponseWriter, r *http.Request) {
		if !controller.Undo() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nothing to undo"})
			return
		}
		hub.broadcastBoard <- boardFromController(controller)
		hub.broadcastStatus <- controllerStatus(controller)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   json.RawMessage  `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if len(payload.Config) > 0 {
			// Merge onto the current config so a partial body leaves
			// unmentioned fields alone.
			merged := GetConfig()
			if err := json.Unmarshal(payload.Config, &merged); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid config"})
				return
			}
			configStore.Update(merged)
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			controller.UpdateSettings(settings, false)
		}
		hub.broadcastSettings <- settingsPayload{
			Settings: controllerSettingsDTO(controller.Settings()),
			Config:   GetConfig(),
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})

	return r
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	status := controllerStatus(controller)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			status := controllerStatus(controller)
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	resp := StatusResponse{
		Settings:        controllerSettingsDTO(controller.Settings()),
		Config:          GetConfig(),
		Board:           boardToSlice(state.Board),
		NextPlayer:      colorName(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		Status:          statusToString(state.Status),
		WhiteCheck:      state.Check[White],
		BlackCheck:      state.Check[Black],
		CapturedByWhite: kindsToTags(state.Captured[White]),
		CapturedByBlack: kindsToTags(state.Captured[Black]),
		WhiteScore:      state.Scores[White],
		BlackScore:      state.Scores[Black],
		HalfmoveClock:   state.HalfmoveClock,
		FullmoveNumber:  state.FullmoveNumber,
		WhiteCastling:   state.Castling[White],
		BlackCastling:   state.Castling[Black],
		AiThinking:      controller.AiThinking(),
		History:         historyToDTO(controller.History()),
	}
	if state.HasEnPassant {
		resp.EnPassant = state.EnPassant.Algebraic()
	}
	if state.HasLastMove {
		dto := moveToDTO(state.LastMove)
		resp.LastMove = &dto
	}
	return resp
}

func boardFromController(controller *GameController) boardPayload {
	state := controller.State()
	return boardPayload{
		Board:      boardToSlice(state.Board),
		NextPlayer: colorName(state.ToMove),
		Status:     statusToString(state.Status),
		AiThinking: controller.AiThinking(),
		WhiteCheck: state.Check[White],
		BlackCheck: state.Check[Black],
		MoveCount:  controller.History().Size(),
		History:    historyToDTO(controller.History()),
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.WhiteType = PlayerAI
		settings.BlackType = PlayerAI
	case "human_vs_human":
		settings.WhiteType = PlayerHuman
		settings.BlackType = PlayerHuman
	case "human_vs_ai":
		if dto.HumanColor == "black" {
			settings.WhiteType = PlayerAI
			settings.BlackType = PlayerHuman
		} else {
			settings.WhiteType = PlayerHuman
			settings.BlackType = PlayerAI
		}
	}
	if dto.Difficulty != "" {
		settings.Difficulty = dto.Difficulty
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "human_vs_ai"
	humanColor := ""
	switch {
	case settings.WhiteType == PlayerAI && settings.BlackType == PlayerAI:
		mode = "ai_vs_ai"
	case settings.WhiteType == PlayerHuman && settings.BlackType == PlayerHuman:
		mode = "human_vs_human"
	case settings.WhiteType == PlayerHuman:
		humanColor = "white"
	default:
		humanColor = "black"
	}
	return GameSettingsDTO{Mode: mode, HumanColor: humanColor, Difficulty: settings.Difficulty}
}

func moveFromAPI(payload apiMove) (Move, bool) {
	from, ok := SquareFromAlgebraic(payload.From)
	if !ok {
		return Move{}, false
	}
	to, ok := SquareFromAlgebraic(payload.To)
	if !ok {
		return Move{}, false
	}
	move := NewMove(from, to)
	if payload.Promotion != "" {
		kind, ok := kindFromPromotionString(payload.Promotion)
		if !ok {
			return Move{}, false
		}
		move.Promotion = kind
	}
	return move, true
}

func kindFromPromotionString(text string) (PieceKind, bool) {
	switch text {
	case "q", "queen":
		return Queen, true
	case "r", "rook":
		return Rook, true
	case "b", "bishop":
		return Bishop, true
	case "n", "knight":
		return Knight, true
	default:
		return KindNone, false
	}
}

func boardToSlice(board Board) [][]string {
	rows := make([][]string, 8)
	for row := 0; row < 8; row++ {
		rows[row] = make([]string, 8)
		for col := 0; col < 8; col++ {
			rows[row][col] = board.At(Square{Row: row, Col: col}).Tag()
		}
	}
	return rows
}

func kindsToTags(kinds []PieceKind) []string {
	tags := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		tags = append(tags, kind.Tag())
	}
	return tags
}

func colorName(color Color) string {
	if color == White {
		return "white"
	}
	return "black"
}

func winnerFromStatus(status GameStatus) string {
	switch status {
	case StatusWhiteWon:
		return "white"
	case StatusBlackWon:
		return "black"
	default:
		return ""
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusWhiteWon:
		return "white_won"
	case StatusBlackWon:
		return "black_won"
	case StatusStalemate:
		return "stalemate"
	case StatusFiftyMoveDraw:
		return "fifty_move_draw"
	default:
		return "running"
	}
}

func moveToDTO(move Move) moveDTO {
	dto := moveDTO{
		From: move.From.Algebraic(),
		To:   move.To.Algebraic(),
	}
	if move.Promotion != KindNone {
		dto.Promotion = move.Promotion.Tag()
	}
	return dto
}

func movesToDTO(moves []Move) []moveDTO {
	result := make([]moveDTO, 0, len(moves))
	for _, move := range moves {
		result = append(result, moveToDTO(move))
	}
	return result
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	dto := historyEntryDTO{
		From:      entry.Move.From.Algebraic(),
		To:        entry.Move.To.Algebraic(),
		Player:    colorName(entry.Player),
		Piece:     entry.Piece.Tag(),
		Notation:  entry.Notation,
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		IsCastle:  entry.IsCastle,
		IsCheck:   entry.IsCheck,
	}
	if entry.IsCapture {
		dto.Captured = entry.Captured.Tag()
	}
	return dto
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	return resetPayload{
		Board:      boardToSlice(state.Board),
		NextPlayer: colorName(state.ToMove),
		Winner:     winnerFromStatus(state.Status),
		Status:     statusToString(state.Status),
		History:    historyToDTO(controller.History()),
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
