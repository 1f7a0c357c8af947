package main

import "fmt"

type Color int

const (
	White Color = iota
	Black
)

type PieceKind int

const (
	KindNone PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is a square's content. The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  PieceKind
}

func (p Piece) IsEmpty() bool {
	return p.Kind == KindNone
}

// Tag renders the piece as the two-character color+kind tag used on the
// wire ("wp", "bk", ...). Empty squares render as "".
func (p Piece) Tag() string {
	if p.IsEmpty() {
		return ""
	}
	return p.Color.Tag() + p.Kind.Tag()
}

func PieceFromTag(tag string) (Piece, bool) {
	if len(tag) != 2 {
		return Piece{}, false
	}
	var color Color
	switch tag[0] {
	case 'w':
		color = White
	case 'b':
		color = Black
	default:
		return Piece{}, false
	}
	for kind := Pawn; kind <= King; kind++ {
		if kind.Tag() == tag[1:] {
			return Piece{Color: color, Kind: kind}, true
		}
	}
	return Piece{}, false
}

func (c Color) Tag() string {
	if c == White {
		return "w"
	}
	return "b"
}

func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

func (k PieceKind) Tag() string {
	switch k {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return ""
	}
}

// Letter is the SAN letter for the kind; pawns have none.
func (k PieceKind) Letter() string {
	switch k {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

// Square addresses a board cell. Row 0 is black's home rank, row 7 is
// white's, column 0 is the "a" file.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) Equals(other Square) bool {
	return s.Row == other.Row && s.Col == other.Col
}

// Algebraic renders the square in file-rank form ("e4").
func (s Square) Algebraic() string {
	if !s.InBounds() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+byte(s.Col), 8-s.Row)
}

func SquareFromAlgebraic(text string) (Square, bool) {
	if len(text) != 2 || text[0] < 'a' || text[0] > 'h' || text[1] < '1' || text[1] > '8' {
		return Square{}, false
	}
	return Square{Row: 8 - int(text[1]-'0'), Col: int(text[0] - 'a')}, true
}

// Board is a value type; plain assignment copies the whole position.
type Board struct {
	cells [64]Piece
}

func NewBoard() Board {
	b := Board{}
	b.Reset()
	return b
}

// Reset places all pieces on their starting squares.
func (b *Board) Reset() {
	b.cells = [64]Piece{}
	backRank := [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col := 0; col < 8; col++ {
		b.Set(Square{Row: 0, Col: col}, Piece{Color: Black, Kind: backRank[col]})
		b.Set(Square{Row: 1, Col: col}, Piece{Color: Black, Kind: Pawn})
		b.Set(Square{Row: 6, Col: col}, Piece{Color: White, Kind: Pawn})
		b.Set(Square{Row: 7, Col: col}, Piece{Color: White, Kind: backRank[col]})
	}
}

func (b Board) At(sq Square) Piece {
	return b.cells[b.index(sq)]
}

func (b *Board) Set(sq Square, piece Piece) {
	b.cells[b.index(sq)] = piece
}

func (b *Board) Remove(sq Square) {
	b.cells[b.index(sq)] = Piece{}
}

func (b Board) IsEmpty(sq Square) bool {
	return sq.InBounds() && b.At(sq).IsEmpty()
}

// FindKing returns the square of the given color's king. A missing king
// only occurs in malformed test states, never through legal play.
func (b Board) FindKing(color Color) (Square, bool) {
	target := Piece{Color: color, Kind: King}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := Square{Row: row, Col: col}
			if b.At(sq) == target {
				return sq, true
			}
		}
	}
	return Square{}, false
}

// CountNonPawnPieces counts pieces of both colors that are neither pawns
// nor kings. Used as the endgame switch for evaluation.
func (b Board) CountNonPawnPieces() int {
	count := 0
	for _, piece := range b.cells {
		if piece.IsEmpty() || piece.Kind == Pawn || piece.Kind == King {
			continue
		}
		count++
	}
	return count
}

func (b Board) Clone() Board {
	return b
}

func (b Board) index(sq Square) int {
	return sq.Row*8 + sq.Col
}

func otherColor(color Color) Color {
	if color == White {
		return Black
	}
	return White
}
