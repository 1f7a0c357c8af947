package main

import (
	"strconv"
	"strings"
)

// sanPrefix builds the standard algebraic notation for a move, minus the
// check/checkmate suffix. It must be called before the move is applied so
// captures and ambiguity can be resolved against the pre-move position.
func sanPrefix(state GameState, rules Rules, move Move) string {
	piece := state.Board.At(move.From)
	capture := !state.Board.At(move.To).IsEmpty()
	enPassant := false
	if piece.Kind == Pawn && move.From.Col != move.To.Col && !capture {
		capture = true
		enPassant = true
	}

	var sb strings.Builder
	sb.WriteString(piece.Kind.Letter())
	sb.WriteString(disambiguation(state, rules, move, piece))
	if piece.Kind == Pawn && capture {
		sb.WriteByte('a' + byte(move.From.Col))
	}
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(move.To.Algebraic())
	if piece.Kind == Pawn && (move.To.Row == 0 || move.To.Row == 7) {
		kind := move.Promotion
		if kind == KindNone {
			kind = Queen
		}
		sb.WriteString("=" + kind.Letter())
	}
	if enPassant {
		sb.WriteString(" e.p.")
	}
	return sb.String()
}

// disambiguation adds the source file (or rank, when the file matches)
// when another piece of the same kind and color could reach the target.
func disambiguation(state GameState, rules Rules, move Move, piece Piece) string {
	if piece.Kind == Pawn || piece.Kind == King {
		return ""
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			if from.Equals(move.From) || state.Board.At(from) != piece {
				continue
			}
			for _, dest := range rules.pseudoDestinations(state, from, piece) {
				if !dest.Equals(move.To) {
					continue
				}
				if col != move.From.Col {
					return string(rune('a' + move.From.Col))
				}
				return strconv.Itoa(8 - move.From.Row)
			}
		}
	}
	return ""
}

// sanSuffix appends "+" for check and "#" for checkmate; it reads the
// post-move state.
func sanSuffix(state GameState, rules Rules) string {
	if !state.Check[state.ToMove] {
		return ""
	}
	if state.Status == StatusWhiteWon || state.Status == StatusBlackWon {
		return "#"
	}
	return "+"
}

func castleNotation(move Move) string {
	if move.To.Col > move.From.Col {
		return "O-O"
	}
	return "O-O-O"
}
