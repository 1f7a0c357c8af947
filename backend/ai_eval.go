package main

// Score for a decided game; everything positional stays far inside it.
const winScore = 1_000_000.0

const (
	mobilityWeight    = 10
	pawnShieldBonus   = 15.0
	defenderBonus     = 10.0
	checkPenalty      = 50.0
	missingKingSafety = -1000.0

	// The king switches to its endgame table once fewer than this many
	// non-pawn, non-king pieces remain on the board.
	endgamePieceThreshold = 8
)

var materialValue = [King + 1]float64{
	Pawn:   100,
	Knight: 320,
	Bishop: 330,
	Rook:   500,
	Queen:  900,
	King:   20000,
}

// Piece-square tables are written from white's perspective with row 0 at
// black's home rank; they are mirrored vertically for black pieces.
var pawnTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{50, 50, 50, 50, 50, 50, 50, 50},
	{10, 10, 20, 30, 30, 20, 10, 10},
	{5, 5, 10, 25, 25, 10, 5, 5},
	{0, 0, 0, 20, 20, 0, 0, 0},
	{5, -5, -10, 0, 0, -10, -5, 5},
	{5, 10, 10, -20, -20, 10, 10, 5},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var knightTable = [8][8]int{
	{-50, -40, -30, -30, -30, -30, -40, -50},
	{-40, -20, 0, 0, 0, 0, -20, -40},
	{-30, 0, 10, 15, 15, 10, 0, -30},
	{-30, 5, 15, 20, 20, 15, 5, -30},
	{-30, 0, 15, 20, 20, 15, 0, -30},
	{-30, 5, 10, 15, 15, 10, 5, -30},
	{-40, -20, 0, 5, 5, 0, -20, -40},
	{-50, -40, -30, -30, -30, -30, -40, -50},
}

var bishopTable = [8][8]int{
	{-20, -10, -10, -10, -10, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 10, 10, 5, 0, -10},
	{-10, 5, 5, 10, 10, 5, 5, -10},
	{-10, 0, 10, 10, 10, 10, 0, -10},
	{-10, 10, 10, 10, 10, 10, 10, -10},
	{-10, 5, 0, 0, 0, 0, 5, -10},
	{-20, -10, -10, -10, -10, -10, -10, -20},
}

var rookTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{5, 10, 10, 10, 10, 10, 10, 5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{0, 0, 0, 5, 5, 0, 0, 0},
}

var queenTable = [8][8]int{
	{-20, -10, -10, -5, -5, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 5, 5, 5, 0, -10},
	{-5, 0, 5, 5, 5, 5, 0, -5},
	{0, 0, 5, 5, 5, 5, 0, -5},
	{-10, 5, 5, 5, 5, 5, 0, -10},
	{-10, 0, 5, 0, 0, 0, 0, -10},
	{-20, -10, -10, -5, -5, -10, -10, -20},
}

var kingTable = [8][8]int{
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-20, -30, -30, -40, -40, -30, -30, -20},
	{-10, -20, -20, -20, -20, -20, -20, -10},
	{20, 20, 0, 0, 0, 0, 20, 20},
	{20, 30, 10, 0, 0, 10, 30, 20},
}

var kingEndgameTable = [8][8]int{
	{-50, -40, -30, -20, -20, -30, -40, -50},
	{-30, -20, -10, 0, 0, -10, -20, -30},
	{-30, -10, 20, 30, 30, 20, -10, -30},
	{-30, -10, 30, 40, 40, 30, -10, -30},
	{-30, -10, 30, 40, 40, 30, -10, -30},
	{-30, -10, 20, 30, 30, 20, -10, -30},
	{-30, -30, 0, 0, 0, 0, -30, -30},
	{-50, -40, -30, -20, -20, -30, -40, -50},
}

// EvaluateState scores a position from white's perspective: positive
// favors white, negative favors black.
func EvaluateState(state GameState, rules Rules) float64 {
	switch state.Status {
	case StatusWhiteWon:
		return winScore
	case StatusBlackWon:
		return -winScore
	case StatusStalemate, StatusFiftyMoveDraw:
		return 0
	}

	endgame := state.Board.CountNonPawnPieces() < endgamePieceThreshold
	score := 0.0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := Square{Row: row, Col: col}
			piece := state.Board.At(sq)
			if piece.IsEmpty() {
				continue
			}
			total := materialValue[piece.Kind] + float64(positionalBonus(piece, sq, endgame))
			if piece.Color == White {
				score += total
			} else {
				score -= total
			}
		}
	}

	whiteMoves := len(rules.LegalMovesForColor(state, White))
	blackMoves := len(rules.LegalMovesForColor(state, Black))
	score += float64((whiteMoves - blackMoves) * mobilityWeight)

	score += kingSafety(state, rules, White) - kingSafety(state, rules, Black)
	return score
}

func positionalBonus(piece Piece, sq Square, endgame bool) int {
	row := sq.Row
	if piece.Color == Black {
		row = 7 - row
	}
	switch piece.Kind {
	case Pawn:
		return pawnTable[row][sq.Col]
	case Knight:
		return knightTable[row][sq.Col]
	case Bishop:
		return bishopTable[row][sq.Col]
	case Rook:
		return rookTable[row][sq.Col]
	case Queen:
		return queenTable[row][sq.Col]
	case King:
		if endgame {
			return kingEndgameTable[row][sq.Col]
		}
		return kingTable[row][sq.Col]
	default:
		return 0
	}
}

// kingSafety rewards friendly cover on the 8 squares around the king,
// weighting pawns above other kinds, and penalizes a king in check. A
// board without the king is a malformed state and gets a sentinel score.
func kingSafety(state GameState, rules Rules, color Color) float64 {
	king, ok := state.Board.FindKing(color)
	if !ok {
		return missingKingSafety
	}
	safety := 0.0
	for _, offset := range kingOffsets {
		sq := Square{Row: king.Row + offset[0], Col: king.Col + offset[1]}
		if !sq.InBounds() {
			continue
		}
		piece := state.Board.At(sq)
		if piece.IsEmpty() || piece.Color != color {
			continue
		}
		if piece.Kind == Pawn {
			safety += pawnShieldBonus
		} else {
			safety += defenderBonus
		}
	}
	if rules.IsInCheck(state, color) {
		safety -= checkPenalty
	}
	return safety
}
