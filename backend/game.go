package main

import (
	"log"
	"time"
)

// snapshot records everything needed to rewind one move.
type snapshot struct {
	state       GameState
	historySize int
}

type Game struct {
	settings    GameSettings
	rules       Rules
	state       GameState
	history     MoveHistory
	snapshots   []snapshot
	whitePlayer IPlayer
	blackPlayer IPlayer
	turnStart   time.Time
}

func NewGame(settings GameSettings) Game {
	g := Game{}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.discardPendingAIMoves()
	g.settings = settings
	g.rules = NewRules()
	g.state.Reset()
	g.history.Clear()
	g.snapshots = nil
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) LegalMoves(from Square) []Move {
	return g.rules.LegalMoves(g.state, from)
}

func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.state.Status != StatusRunning {
		return false, "game not running"
	}
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()

	g.pushSnapshot()
	mover := g.state.ToMove
	result, ok := g.rules.Apply(&g.state, move)
	if !ok {
		g.snapshots = g.snapshots[:len(g.snapshots)-1]
		return false, "illegal move"
	}

	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	entry := HistoryEntry{
		Move:      result.Move,
		Player:    mover,
		Piece:     result.Piece.Kind,
		Notation:  result.Notation,
		ElapsedMs: elapsedMs,
		IsAi:      isAiMove,
		IsCapture: result.IsCapture,
		IsCastle:  result.IsCastle,
		IsCheck:   result.Check,
	}
	if result.IsCapture {
		entry.Captured = result.Captured.Kind
	}
	g.history.Push(entry)
	g.logMovePlayed(entry)
	if g.state.IsOver() {
		g.logOutcome()
	}
	g.turnStart = time.Now()
	return true, ""
}

// Undo rewinds one move. Against an AI opponent it rewinds two so the
// human is back on turn. Returns false when no snapshot remains.
func (g *Game) Undo() bool {
	if len(g.snapshots) == 0 {
		return false
	}
	g.discardPendingAIMoves()
	steps := 1
	if g.currentPlayerIsHumanVsAI() && len(g.snapshots) >= 2 {
		steps = 2
	}
	for i := 0; i < steps; i++ {
		snap := g.snapshots[len(g.snapshots)-1]
		g.snapshots = g.snapshots[:len(g.snapshots)-1]
		g.state = snap.state.Clone()
		for g.history.Size() > snap.historySize {
			g.history.Pop()
		}
	}
	g.turnStart = time.Now()
	return true
}

func (g *Game) Tick() bool {
	if g.state.Status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if player.IsHuman() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			move := human.TakePendingMove()
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		return false
	}
	ai, ok := player.(*AIPlayer)
	if ok {
		if ai.HasMoveReady() {
			move := ai.TakeMove()
			if !move.IsValid() {
				return false
			}
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		if !ai.IsThinking() {
			ai.StartThinking(g.state.Clone(), g.rules)
		}
		return false
	}
	move := player.ChooseMove(g.state.Clone(), g.rules)
	applied, _ := g.TryApplyMove(move)
	return applied
}

func (g *Game) SubmitHumanMove(move Move) bool {
	player := g.currentPlayer()
	if player == nil || !player.IsHuman() {
		return false
	}
	human, ok := player.(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) AiThinking() bool {
	ai, ok := g.currentPlayer().(*AIPlayer)
	return ok && ai.IsThinking()
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.state.ToMove)
}

func (g *Game) playerForColor(color Color) IPlayer {
	if color == White {
		return g.whitePlayer
	}
	return g.blackPlayer
}

func (g *Game) currentPlayerIsHumanVsAI() bool {
	current := g.currentPlayer()
	opponent := g.playerForColor(otherColor(g.state.ToMove))
	return current != nil && current.IsHuman() && opponent != nil && !opponent.IsHuman()
}

func (g *Game) createPlayers() {
	depth := DepthForDifficulty(g.settings.Difficulty)
	if g.settings.WhiteType == PlayerHuman {
		g.whitePlayer = NewHumanPlayer()
	} else {
		g.whitePlayer = NewAIPlayer(depth)
	}
	if g.settings.BlackType == PlayerHuman {
		g.blackPlayer = NewHumanPlayer()
	} else {
		g.blackPlayer = NewAIPlayer(depth)
	}
}

func (g *Game) pushSnapshot() {
	limit := GetConfig().UndoHistoryLimit
	if limit <= 0 {
		limit = 50
	}
	g.snapshots = append(g.snapshots, snapshot{
		state:       g.state.Clone(),
		historySize: g.history.Size(),
	})
	if len(g.snapshots) > limit {
		g.snapshots = g.snapshots[len(g.snapshots)-limit:]
	}
}

func (g *Game) discardPendingAIMoves() {
	if ai, ok := g.whitePlayer.(*AIPlayer); ok {
		ai.DiscardPending()
	}
	if ai, ok := g.blackPlayer.(*AIPlayer); ok {
		ai.DiscardPending()
	}
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "AI"
		}
		return "Human"
	}
	log.Printf("[backend] new game: white=%s black=%s difficulty=%s",
		label(g.settings.WhiteType), label(g.settings.BlackType), g.settings.Difficulty)
}

func (g *Game) logMovePlayed(entry HistoryEntry) {
	who := "human"
	if entry.IsAi {
		who = "ai"
	}
	log.Printf("[backend] %s played %s (%s) in %.0fms", entry.Player, entry.Notation, who, entry.ElapsedMs)
}

func (g *Game) logOutcome() {
	switch g.state.Status {
	case StatusWhiteWon:
		log.Printf("[backend] checkmate: white wins")
	case StatusBlackWon:
		log.Printf("[backend] checkmate: black wins")
	case StatusStalemate:
		log.Printf("[backend] draw: stalemate")
	case StatusFiftyMoveDraw:
		log.Printf("[backend] draw: fifty-move rule")
	}
}
