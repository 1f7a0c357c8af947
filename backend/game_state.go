package main

type GameStatus int

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusWhiteWon
	StatusBlackWon
	StatusStalemate
	StatusFiftyMoveDraw
)

// CastlingRights are monotonic: they are only ever cleared once the king
// or the relevant rook has moved or been captured on its home square.
type CastlingRights struct {
	KingSide  bool `json:"king_side"`
	QueenSide bool `json:"queen_side"`
}

// GameState owns the board plus every rule-relevant side condition.
// Mutation goes exclusively through Rules.Apply / Rules.unapply; search
// works on a Clone so the authoritative state is never touched.
type GameState struct {
	Board          Board
	ToMove         Color
	Status         GameStatus
	Castling       [2]CastlingRights
	HasEnPassant   bool
	EnPassant      Square
	HalfmoveClock  int
	FullmoveNumber int
	Check          [2]bool
	Captured       [2][]PieceKind
	Scores         [2]int
	HasLastMove    bool
	LastMove       Move
}

func DefaultGameState() GameState {
	state := GameState{}
	state.Reset()
	return state
}

func (s *GameState) Reset() {
	s.Board = NewBoard()
	s.ToMove = White
	s.Status = StatusNotStarted
	s.Castling[White] = CastlingRights{KingSide: true, QueenSide: true}
	s.Castling[Black] = CastlingRights{KingSide: true, QueenSide: true}
	s.HasEnPassant = false
	s.EnPassant = Square{}
	s.HalfmoveClock = 0
	s.FullmoveNumber = 1
	s.Check = [2]bool{}
	s.Captured = [2][]PieceKind{}
	s.Scores = [2]int{}
	s.HasLastMove = false
	s.LastMove = Move{}
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Captured[White] = append([]PieceKind(nil), s.Captured[White]...)
	clone.Captured[Black] = append([]PieceKind(nil), s.Captured[Black]...)
	return clone
}

// IsOver reports whether the game reached a terminal status.
func (s GameState) IsOver() bool {
	switch s.Status {
	case StatusWhiteWon, StatusBlackWon, StatusStalemate, StatusFiftyMoveDraw:
		return true
	default:
		return false
	}
}

// Winner returns the winning color for checkmate results.
func (s GameState) Winner() (Color, bool) {
	switch s.Status {
	case StatusWhiteWon:
		return White, true
	case StatusBlackWon:
		return Black, true
	default:
		return White, false
	}
}
