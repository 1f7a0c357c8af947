package main

import (
	"math"
	"math/rand"
	"time"
)

// SearchStats reports what a single BestMove call looked at.
type SearchStats struct {
	Depth          int
	NodesEvaluated int
	Duration       time.Duration
	BestScore      float64
}

type searcher struct {
	rules Rules
	stats SearchStats
}

// BestMove runs a fixed-depth minimax with alpha-beta pruning and returns
// the best move for the side to move. Root moves are shuffled before the
// scan so equal-scoring moves are picked uniformly. ok is false when the
// position has no legal move or the game is already decided.
func BestMove(state GameState, rules Rules, depth int, rng *rand.Rand) (Move, bool, SearchStats) {
	s := searcher{rules: rules}
	s.stats.Depth = depth
	start := time.Now()
	move, ok := s.searchRoot(state, depth, rng)
	s.stats.Duration = time.Since(start)
	return move, ok, s.stats
}

func (s *searcher) searchRoot(state GameState, depth int, rng *rand.Rand) (Move, bool) {
	if depth < 1 || state.IsOver() {
		return Move{}, false
	}

	// Search works on a private copy so apply/unapply never touches
	// the caller's state.
	scratch := state.Clone()
	moves := s.rules.LegalMovesForColor(scratch, scratch.ToMove)
	if len(moves) == 0 {
		return Move{}, false
	}
	if rng != nil {
		rng.Shuffle(len(moves), func(i, j int) {
			moves[i], moves[j] = moves[j], moves[i]
		})
	}

	maximizing := scratch.ToMove == White
	alpha := math.Inf(-1)
	beta := math.Inf(1)
	best := moves[0]
	bestScore := math.Inf(1)
	if maximizing {
		bestScore = math.Inf(-1)
	}

	for _, move := range moves {
		undo := s.rules.applyUnchecked(&scratch, move)
		score := s.minimax(&scratch, depth-1, alpha, beta, !maximizing)
		s.rules.unapply(&scratch, undo)

		if maximizing {
			if score > bestScore {
				bestScore, best = score, move
			}
			alpha = math.Max(alpha, bestScore)
		} else {
			if score < bestScore {
				bestScore, best = score, move
			}
			beta = math.Min(beta, bestScore)
		}
	}
	s.stats.BestScore = bestScore
	return best, true
}

func (s *searcher) minimax(state *GameState, depth int, alpha, beta float64, maximizing bool) float64 {
	if depth == 0 || state.IsOver() {
		s.stats.NodesEvaluated++
		return EvaluateState(*state, s.rules)
	}

	moves := s.rules.LegalMovesForColor(*state, state.ToMove)
	if len(moves) == 0 {
		s.stats.NodesEvaluated++
		if s.rules.IsInCheck(*state, state.ToMove) {
			if state.ToMove == White {
				return -winScore
			}
			return winScore
		}
		return 0
	}

	if maximizing {
		best := math.Inf(-1)
		for _, move := range moves {
			undo := s.rules.applyUnchecked(state, move)
			score := s.minimax(state, depth-1, alpha, beta, false)
			s.rules.unapply(state, undo)
			best = math.Max(best, score)
			alpha = math.Max(alpha, best)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.Inf(1)
	for _, move := range moves {
		undo := s.rules.applyUnchecked(state, move)
		score := s.minimax(state, depth-1, alpha, beta, true)
		s.rules.unapply(state, undo)
		best = math.Min(best, score)
		beta = math.Min(beta, best)
		if beta <= alpha {
			break
		}
	}
	return best
}
