package main

// Move is a from/to square pair plus an optional promotion kind. Pawn
// moves reaching the final rank are expanded into one Move per promotion
// piece, so a Move is always unambiguous.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Promotion PieceKind `json:"promotion,omitempty"`
}

func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

func (m Move) IsValid() bool {
	return m.From.InBounds() && m.To.InBounds() && !m.From.Equals(m.To)
}

func (m Move) Equals(other Move) bool {
	return m.From.Equals(other.From) && m.To.Equals(other.To) && m.Promotion == other.Promotion
}

func (m Move) String() string {
	text := m.From.Algebraic() + m.To.Algebraic()
	if m.Promotion != KindNone {
		text += "=" + m.Promotion.Letter()
	}
	return text
}
