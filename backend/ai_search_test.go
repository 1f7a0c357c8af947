package main

import (
	"math"
	"math/rand"
	"testing"
)

// plainMinimax is a full-width reference without pruning, used to verify
// that alpha-beta never changes the root value.
func plainMinimax(state *GameState, rules Rules, depth int, maximizing bool) float64 {
	if depth == 0 || state.IsOver() {
		return EvaluateState(*state, rules)
	}
	moves := rules.LegalMovesForColor(*state, state.ToMove)
	if len(moves) == 0 {
		if rules.IsInCheck(*state, state.ToMove) {
			if state.ToMove == White {
				return -winScore
			}
			return winScore
		}
		return 0
	}
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, move := range moves {
		undo := rules.applyUnchecked(state, move)
		score := plainMinimax(state, rules, depth-1, !maximizing)
		rules.unapply(state, undo)
		if maximizing {
			best = math.Max(best, score)
		} else {
			best = math.Min(best, score)
		}
	}
	return best
}

func TestBestMoveCapturesHangingQueen(t *testing.T) {
	rules := NewRules()
	state := emptyPosition()
	place(&state, "wk", "h1")
	place(&state, "wr", "a1")
	place(&state, "bk", "h8")
	place(&state, "bq", "a8")
	state.ToMove = White

	move, ok, _ := BestMove(state, rules, 1, rand.New(rand.NewSource(1)))
	if !ok {
		t.Fatalf("expected a best move")
	}
	want := NewMove(sq(t, "a1"), sq(t, "a8"))
	if !move.Equals(want) {
		t.Fatalf("expected Rxa8, got %v", move)
	}
}

func TestBestMoveMinimizesForBlack(t *testing.T) {
	rules := NewRules()
	state := emptyPosition()
	place(&state, "bk", "h8")
	place(&state, "br", "a8")
	place(&state, "wk", "h1")
	place(&state, "wq", "a1")
	state.ToMove = Black

	move, ok, _ := BestMove(state, rules, 1, rand.New(rand.NewSource(1)))
	if !ok {
		t.Fatalf("expected a best move")
	}
	want := NewMove(sq(t, "a8"), sq(t, "a1"))
	if !move.Equals(want) {
		t.Fatalf("expected Rxa1, got %v", move)
	}
}

func TestBestMoveFindsMateInOne(t *testing.T) {
	rules := NewRules()
	state := emptyPosition()
	place(&state, "bk", "h8")
	place(&state, "bp", "g7")
	place(&state, "bp", "h7")
	place(&state, "wr", "a1")
	place(&state, "wk", "e1")
	state.ToMove = White

	move, ok, stats := BestMove(state, rules, 2, rand.New(rand.NewSource(7)))
	if !ok {
		t.Fatalf("expected a best move")
	}
	want := NewMove(sq(t, "a1"), sq(t, "a8"))
	if !move.Equals(want) {
		t.Fatalf("expected Ra8#, got %v", move)
	}
	if stats.BestScore != winScore {
		t.Fatalf("expected mate score %f, got %f", winScore, stats.BestScore)
	}
}

func TestBestMoveFailsOnFinishedGame(t *testing.T) {
	rules := NewRules()
	state := runningState()
	mustApply(t, rules, &state, "f2", "f3")
	mustApply(t, rules, &state, "e7", "e5")
	mustApply(t, rules, &state, "g2", "g4")
	mustApply(t, rules, &state, "d8", "h4")

	if _, ok, _ := BestMove(state, rules, 3, rand.New(rand.NewSource(1))); ok {
		t.Fatalf("expected no best move in a finished game")
	}
}

func TestSearchDoesNotMutateCallerState(t *testing.T) {
	rules := NewRules()
	state := runningState()
	before := state.Clone()
	if _, ok, _ := BestMove(state, rules, 2, rand.New(rand.NewSource(3))); !ok {
		t.Fatalf("expected a best move from the initial position")
	}
	if before.Board != state.Board || before.ToMove != state.ToMove || before.HalfmoveClock != state.HalfmoveClock {
		t.Fatalf("search must not mutate the caller's state")
	}
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	rules := NewRules()
	state := emptyPosition()
	place(&state, "wk", "e1")
	place(&state, "wr", "a1")
	place(&state, "wp", "b2")
	place(&state, "bk", "e8")
	place(&state, "br", "h8")
	place(&state, "bp", "g7")
	state.ToMove = White

	depth := 3
	reference := state.Clone()
	want := plainMinimax(&reference, rules, depth, true)

	s := searcher{rules: rules}
	scratch := state.Clone()
	got := s.minimax(&scratch, depth, math.Inf(-1), math.Inf(1), true)
	if got != want {
		t.Fatalf("alpha-beta value %f diverges from plain minimax %f", got, want)
	}
}
