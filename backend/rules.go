package main

// Halfmoves without a pawn move or capture before the game is drawn
// (50 full moves by each side).
const fiftyMoveHalfmoves = 100

var promotionKinds = [4]PieceKind{Queen, Rook, Bishop, Knight}

var knightOffsets = [8][2]int{
	{2, 1}, {1, 2}, {-1, 2}, {-2, 1},
	{-2, -1}, {-1, -2}, {1, -2}, {2, -1},
}

var kingOffsets = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, -1}, {-1, 1},
}

var diagonalDirs = [4][2]int{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
var straightDirs = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

type Rules struct{}

func NewRules() Rules {
	return Rules{}
}

// MoveResult describes an applied move with enough detail for the caller
// to animate, score and narrate it.
type MoveResult struct {
	Move           Move
	Piece          Piece
	Captured       Piece
	CapturedSquare Square
	IsCapture      bool
	IsCastle       bool
	IsEnPassant    bool
	IsPromotion    bool
	Notation       string
	Check          bool
	Status         GameStatus
}

// moveUndo records everything Rules.applyUnchecked changed so unapply can
// restore the exact prior GameState.
type moveUndo struct {
	move             Move
	moved            Piece
	captured         Piece
	capturedSquare   Square
	rookFrom         Square
	rookTo           Square
	isCastle         bool
	isEnPassant      bool
	isPromotion      bool
	prevCastling     [2]CastlingRights
	prevHasEnPassant bool
	prevEnPassant    Square
	prevHalfmove     int
	prevFullmove     int
	prevStatus       GameStatus
	prevCheck        [2]bool
	prevHasLastMove  bool
	prevLastMove     Move
}

// LegalMoves returns every legal move for the piece on from, with pawn
// promotions expanded into one move per promotion kind. Squares that do
// not hold a piece of the side to move yield an empty result.
func (r Rules) LegalMoves(state GameState, from Square) []Move {
	if !from.InBounds() {
		return nil
	}
	piece := state.Board.At(from)
	if piece.IsEmpty() || piece.Color != state.ToMove {
		return nil
	}
	return r.legalMovesFrom(state, from, piece)
}

// LegalMovesForColor enumerates legal moves for every piece of the given
// color regardless of whose turn it is. Evaluation uses it for mobility.
func (r Rules) LegalMovesForColor(state GameState, color Color) []Move {
	moves := []Move{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			piece := state.Board.At(from)
			if piece.IsEmpty() || piece.Color != color {
				continue
			}
			moves = append(moves, r.legalMovesFrom(state, from, piece)...)
		}
	}
	return moves
}

func (r Rules) legalMovesFrom(state GameState, from Square, piece Piece) []Move {
	destinations := r.pseudoDestinations(state, from, piece)
	moves := make([]Move, 0, len(destinations))
	for _, to := range destinations {
		if r.wouldLeaveKingInCheck(state, from, to, piece.Color) {
			continue
		}
		if piece.Kind == Pawn && (to.Row == 0 || to.Row == 7) {
			for _, kind := range promotionKinds {
				moves = append(moves, Move{From: from, To: to, Promotion: kind})
			}
			continue
		}
		moves = append(moves, Move{From: from, To: to})
	}
	return moves
}

func (r Rules) pseudoDestinations(state GameState, from Square, piece Piece) []Square {
	switch piece.Kind {
	case Pawn:
		return r.pawnDestinations(state, from, piece.Color)
	case Knight:
		return r.offsetDestinations(state.Board, from, piece.Color, knightOffsets)
	case Bishop:
		return r.slidingDestinations(state.Board, from, piece.Color, diagonalDirs[:])
	case Rook:
		return r.slidingDestinations(state.Board, from, piece.Color, straightDirs[:])
	case Queen:
		dirs := append(append([][2]int{}, diagonalDirs[:]...), straightDirs[:]...)
		return r.slidingDestinations(state.Board, from, piece.Color, dirs)
	case King:
		return r.kingDestinations(state, from, piece.Color)
	default:
		return nil
	}
}

func (r Rules) pawnDestinations(state GameState, from Square, color Color) []Square {
	moves := []Square{}
	direction := 1
	homeRow := 1
	if color == White {
		direction = -1
		homeRow = 6
	}

	forward := Square{Row: from.Row + direction, Col: from.Col}
	if forward.InBounds() && state.Board.IsEmpty(forward) {
		moves = append(moves, forward)
		double := Square{Row: from.Row + 2*direction, Col: from.Col}
		if from.Row == homeRow && state.Board.IsEmpty(double) {
			moves = append(moves, double)
		}
	}

	for _, dc := range [2]int{-1, 1} {
		target := Square{Row: from.Row + direction, Col: from.Col + dc}
		if !target.InBounds() {
			continue
		}
		victim := state.Board.At(target)
		if !victim.IsEmpty() && victim.Color != color {
			moves = append(moves, target)
			continue
		}
		if state.HasEnPassant && target.Equals(state.EnPassant) {
			// The target square is empty; the double-stepped pawn sits
			// beside the capturer and must belong to the opponent.
			beside := state.Board.At(Square{Row: from.Row, Col: target.Col})
			if beside.Kind == Pawn && beside.Color != color {
				moves = append(moves, target)
			}
		}
	}
	return moves
}

func (r Rules) offsetDestinations(board Board, from Square, color Color, offsets [8][2]int) []Square {
	moves := []Square{}
	for _, offset := range offsets {
		to := Square{Row: from.Row + offset[0], Col: from.Col + offset[1]}
		if !to.InBounds() {
			continue
		}
		victim := board.At(to)
		if victim.IsEmpty() || victim.Color != color {
			moves = append(moves, to)
		}
	}
	return moves
}

func (r Rules) slidingDestinations(board Board, from Square, color Color, dirs [][2]int) []Square {
	moves := []Square{}
	for _, dir := range dirs {
		for step := 1; step < 8; step++ {
			to := Square{Row: from.Row + dir[0]*step, Col: from.Col + dir[1]*step}
			if !to.InBounds() {
				break
			}
			victim := board.At(to)
			if victim.IsEmpty() {
				moves = append(moves, to)
				continue
			}
			if victim.Color != color {
				moves = append(moves, to)
			}
			break
		}
	}
	return moves
}

func (r Rules) kingDestinations(state GameState, from Square, color Color) []Square {
	moves := r.offsetDestinations(state.Board, from, color, kingOffsets)

	// Castling is never pseudo-legal while the king stands in check.
	if r.isInCheckOn(state.Board, color) {
		return moves
	}
	opponent := otherColor(color)
	rights := state.Castling[color]
	if rights.KingSide {
		through := Square{Row: from.Row, Col: from.Col + 1}
		target := Square{Row: from.Row, Col: from.Col + 2}
		if state.Board.IsEmpty(through) && state.Board.IsEmpty(target) &&
			!r.IsSquareAttacked(state.Board, through, opponent) &&
			!r.IsSquareAttacked(state.Board, target, opponent) {
			moves = append(moves, target)
		}
	}
	if rights.QueenSide {
		through := Square{Row: from.Row, Col: from.Col - 1}
		target := Square{Row: from.Row, Col: from.Col - 2}
		rookPath := Square{Row: from.Row, Col: from.Col - 3}
		if state.Board.IsEmpty(through) && state.Board.IsEmpty(target) && state.Board.IsEmpty(rookPath) &&
			!r.IsSquareAttacked(state.Board, through, opponent) &&
			!r.IsSquareAttacked(state.Board, target, opponent) {
			moves = append(moves, target)
		}
	}
	return moves
}

// IsSquareAttacked reports whether any piece of byColor has a pseudo-legal
// attacking path to sq. Pawns only attack diagonally forward.
func (r Rules) IsSquareAttacked(board Board, sq Square, byColor Color) bool {
	pawnRow := sq.Row - 1
	if byColor == White {
		pawnRow = sq.Row + 1
	}
	for _, dc := range [2]int{-1, 1} {
		from := Square{Row: pawnRow, Col: sq.Col + dc}
		if from.InBounds() && board.At(from) == (Piece{Color: byColor, Kind: Pawn}) {
			return true
		}
	}

	for _, offset := range knightOffsets {
		from := Square{Row: sq.Row + offset[0], Col: sq.Col + offset[1]}
		if from.InBounds() && board.At(from) == (Piece{Color: byColor, Kind: Knight}) {
			return true
		}
	}

	for _, offset := range kingOffsets {
		from := Square{Row: sq.Row + offset[0], Col: sq.Col + offset[1]}
		if from.InBounds() && board.At(from) == (Piece{Color: byColor, Kind: King}) {
			return true
		}
	}

	if r.rayAttacked(board, sq, byColor, diagonalDirs[:], Bishop) {
		return true
	}
	return r.rayAttacked(board, sq, byColor, straightDirs[:], Rook)
}

func (r Rules) rayAttacked(board Board, sq Square, byColor Color, dirs [][2]int, slider PieceKind) bool {
	for _, dir := range dirs {
		for step := 1; step < 8; step++ {
			from := Square{Row: sq.Row + dir[0]*step, Col: sq.Col + dir[1]*step}
			if !from.InBounds() {
				break
			}
			piece := board.At(from)
			if piece.IsEmpty() {
				continue
			}
			if piece.Color == byColor && (piece.Kind == slider || piece.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// IsInCheck reports whether the given color's king is attacked. A state
// without that king (malformed test positions only) reports not in check.
func (r Rules) IsInCheck(state GameState, color Color) bool {
	return r.isInCheckOn(state.Board, color)
}

func (r Rules) isInCheckOn(board Board, color Color) bool {
	king, ok := board.FindKing(color)
	if !ok {
		return false
	}
	return r.IsSquareAttacked(board, king, otherColor(color))
}

// wouldLeaveKingInCheck simulates the move on a scratch copy of the board
// only and reports whether the mover's own king ends up attacked. This is
// the legality filter applied to every pseudo-legal move.
func (r Rules) wouldLeaveKingInCheck(state GameState, from, to Square, color Color) bool {
	board := state.Board.Clone()
	piece := board.At(from)
	if piece.Kind == Pawn && from.Col != to.Col && board.IsEmpty(to) {
		// En passant removes the pawn on the adjacent rank, not on the
		// destination square.
		board.Remove(Square{Row: from.Row, Col: to.Col})
	}
	board.Set(to, piece)
	board.Remove(from)
	return r.isInCheckOn(board, color)
}

func (r Rules) hasAnyLegalMove(state GameState, color Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			piece := state.Board.At(from)
			if piece.IsEmpty() || piece.Color != color {
				continue
			}
			if len(r.legalMovesFrom(state, from, piece)) > 0 {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal
// moves across all of its pieces.
func (r Rules) IsCheckmate(state GameState) bool {
	return r.IsInCheck(state, state.ToMove) && !r.hasAnyLegalMove(state, state.ToMove)
}

// IsStalemate reports whether the side to move is not in check but has no
// legal moves.
func (r Rules) IsStalemate(state GameState) bool {
	return !r.IsInCheck(state, state.ToMove) && !r.hasAnyLegalMove(state, state.ToMove)
}

func (r Rules) IsFiftyMoveDraw(state GameState) bool {
	return state.HalfmoveClock >= fiftyMoveHalfmoves
}

// Apply performs a validated move with full side effects and returns the
// result. Illegal requests leave the state untouched and return ok=false.
func (r Rules) Apply(state *GameState, move Move) (MoveResult, bool) {
	if state.Status != StatusRunning {
		return MoveResult{}, false
	}
	move = r.normalizePromotion(*state, move)
	if !r.isLegal(*state, move) {
		return MoveResult{}, false
	}
	piece := state.Board.At(move.From)
	prefix := sanPrefix(*state, r, move)
	undo := r.applyUnchecked(state, move)
	result := MoveResult{
		Move:           move,
		Piece:          piece,
		Captured:       undo.captured,
		CapturedSquare: undo.capturedSquare,
		IsCapture:      !undo.captured.IsEmpty(),
		IsCastle:       undo.isCastle,
		IsEnPassant:    undo.isEnPassant,
		IsPromotion:    undo.isPromotion,
		Check:          state.Check[state.ToMove],
		Status:         state.Status,
	}
	if undo.isCastle {
		result.Notation = castleNotation(move) + sanSuffix(*state, r)
	} else {
		result.Notation = prefix + sanSuffix(*state, r)
	}
	return result, true
}

// Callers that omit the promotion kind get a queen, matching the standard
// UI shortcut.
func (r Rules) normalizePromotion(state GameState, move Move) Move {
	if move.Promotion != KindNone {
		return move
	}
	if !move.From.InBounds() || !move.To.InBounds() {
		return move
	}
	piece := state.Board.At(move.From)
	if piece.Kind == Pawn && (move.To.Row == 0 || move.To.Row == 7) {
		move.Promotion = Queen
	}
	return move
}

func (r Rules) isLegal(state GameState, move Move) bool {
	for _, legal := range r.LegalMoves(state, move.From) {
		if legal.Equals(move) {
			return true
		}
	}
	return false
}

// applyUnchecked performs the move with full side effects without
// validating it against the legal set. The search draws its moves from
// LegalMoves, so the check would be redundant there.
func (r Rules) applyUnchecked(state *GameState, move Move) moveUndo {
	mover := state.ToMove
	piece := state.Board.At(move.From)
	undo := moveUndo{
		move:             move,
		moved:            piece,
		prevCastling:     state.Castling,
		prevHasEnPassant: state.HasEnPassant,
		prevEnPassant:    state.EnPassant,
		prevHalfmove:     state.HalfmoveClock,
		prevFullmove:     state.FullmoveNumber,
		prevStatus:       state.Status,
		prevCheck:        state.Check,
		prevHasLastMove:  state.HasLastMove,
		prevLastMove:     state.LastMove,
	}

	captured := state.Board.At(move.To)
	capturedSquare := move.To
	if piece.Kind == Pawn && move.From.Col != move.To.Col && captured.IsEmpty() {
		capturedSquare = Square{Row: move.From.Row, Col: move.To.Col}
		captured = state.Board.At(capturedSquare)
		state.Board.Remove(capturedSquare)
		undo.isEnPassant = true
	}
	undo.captured = captured
	undo.capturedSquare = capturedSquare

	if piece.Kind == King && abs(move.To.Col-move.From.Col) > 1 {
		undo.isCastle = true
		if move.To.Col > move.From.Col {
			undo.rookFrom = Square{Row: move.From.Row, Col: 7}
			undo.rookTo = Square{Row: move.From.Row, Col: move.To.Col - 1}
		} else {
			undo.rookFrom = Square{Row: move.From.Row, Col: 0}
			undo.rookTo = Square{Row: move.From.Row, Col: move.To.Col + 1}
		}
		state.Board.Set(undo.rookTo, state.Board.At(undo.rookFrom))
		state.Board.Remove(undo.rookFrom)
	}

	state.Board.Set(move.To, piece)
	state.Board.Remove(move.From)

	if piece.Kind == Pawn && (move.To.Row == 0 || move.To.Row == 7) {
		kind := move.Promotion
		if kind == KindNone {
			kind = Queen
		}
		state.Board.Set(move.To, Piece{Color: piece.Color, Kind: kind})
		undo.isPromotion = true
	}

	rights := &state.Castling[mover]
	switch piece.Kind {
	case King:
		rights.KingSide = false
		rights.QueenSide = false
	case Rook:
		if move.From.Row == homeRow(mover) {
			if move.From.Col == 0 {
				rights.QueenSide = false
			} else if move.From.Col == 7 {
				rights.KingSide = false
			}
		}
	}
	// A capture landing on an unmoved rook's home square also clears the
	// victim's right on that side.
	if captured.Kind == Rook && capturedSquare.Row == homeRow(captured.Color) {
		victimRights := &state.Castling[captured.Color]
		if capturedSquare.Col == 0 {
			victimRights.QueenSide = false
		} else if capturedSquare.Col == 7 {
			victimRights.KingSide = false
		}
	}

	state.HasEnPassant = false
	state.EnPassant = Square{}
	if piece.Kind == Pawn && abs(move.To.Row-move.From.Row) == 2 {
		state.HasEnPassant = true
		state.EnPassant = Square{Row: (move.From.Row + move.To.Row) / 2, Col: move.From.Col}
	}

	if piece.Kind == Pawn || !captured.IsEmpty() {
		state.HalfmoveClock = 0
	} else {
		state.HalfmoveClock++
	}
	if mover == Black {
		state.FullmoveNumber++
	}
	if !captured.IsEmpty() {
		state.Captured[mover] = append(state.Captured[mover], captured.Kind)
		state.Scores[mover] += captureScore(captured.Kind)
	}

	state.HasLastMove = true
	state.LastMove = move
	state.ToMove = otherColor(mover)
	r.refreshStatus(state)
	return undo
}

// unapply is the exact inverse of applyUnchecked.
func (r Rules) unapply(state *GameState, undo moveUndo) {
	mover := undo.moved.Color
	state.Board.Set(undo.move.From, undo.moved)
	state.Board.Remove(undo.move.To)
	if !undo.captured.IsEmpty() {
		state.Board.Set(undo.capturedSquare, undo.captured)
		list := state.Captured[mover][:len(state.Captured[mover])-1]
		if len(list) == 0 {
			list = nil
		}
		state.Captured[mover] = list
		state.Scores[mover] -= captureScore(undo.captured.Kind)
	}
	if undo.isCastle {
		state.Board.Set(undo.rookFrom, state.Board.At(undo.rookTo))
		state.Board.Remove(undo.rookTo)
	}
	state.Castling = undo.prevCastling
	state.HasEnPassant = undo.prevHasEnPassant
	state.EnPassant = undo.prevEnPassant
	state.HalfmoveClock = undo.prevHalfmove
	state.FullmoveNumber = undo.prevFullmove
	state.Status = undo.prevStatus
	state.Check = undo.prevCheck
	state.HasLastMove = undo.prevHasLastMove
	state.LastMove = undo.prevLastMove
	state.ToMove = mover
}

// refreshStatus recomputes check flags and the terminal status for the new
// side to move after a move has been applied.
func (r Rules) refreshStatus(state *GameState) {
	state.Check[White] = r.IsInCheck(*state, White)
	state.Check[Black] = r.IsInCheck(*state, Black)
	next := state.ToMove
	hasMove := r.hasAnyLegalMove(*state, next)
	switch {
	case !hasMove && state.Check[next]:
		if next == White {
			state.Status = StatusBlackWon
		} else {
			state.Status = StatusWhiteWon
		}
	case !hasMove:
		state.Status = StatusStalemate
	case state.HalfmoveClock >= fiftyMoveHalfmoves:
		state.Status = StatusFiftyMoveDraw
	default:
		state.Status = StatusRunning
	}
}

func homeRow(color Color) int {
	if color == White {
		return 7
	}
	return 0
}

// captureScore is the traditional display value of a captured piece, used
// for the running per-color scores. The search has its own weights.
func captureScore(kind PieceKind) int {
	switch kind {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
