package main

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

type AIPlayer struct {
	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  Move
	rng        *rand.Rand
	depth      int
}

func NewAIPlayer(depth int) *AIPlayer {
	config := GetConfig()
	seed := config.AiSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &AIPlayer{
		rng:   rand.New(rand.NewSource(seed)),
		depth: depth,
	}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

// ChooseMove searches synchronously; the tick loop prefers StartThinking
// so the controller mutex is never held across a search.
func (a *AIPlayer) ChooseMove(state GameState, rules Rules) Move {
	move, ok, stats := BestMove(state, rules, a.depth, a.rng)
	if GetConfig().AiLogSearchStats {
		logSearchStats("choose", stats)
	}
	if !ok {
		return Move{}
	}
	return move
}

func (a *AIPlayer) StartThinking(state GameState, rules Rules) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)
	a.stopSignal.Store(false)

	stateCopy := state.Clone()
	done := make(chan struct{})
	a.workerDone = done
	go func() {
		defer close(done)
		move, ok, stats := BestMove(stateCopy, rules, a.depth, a.rng)
		if a.stopSignal.Load() {
			// Game was reset mid-search; the result belongs to a
			// position that no longer exists.
			a.moveReady.Store(false)
			a.thinking.Store(false)
			return
		}
		if GetConfig().AiLogSearchStats {
			logSearchStats("think", stats)
		}
		a.moveMutex.Lock()
		if ok {
			a.readyMove = move
		} else {
			a.readyMove = Move{}
		}
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
	}()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() Move {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove
}

func (a *AIPlayer) DiscardPending() {
	a.stopSignal.Store(true)
	a.moveReady.Store(false)
}

func logSearchStats(tag string, stats SearchStats) {
	nps := 0.0
	if stats.Duration > 0 {
		nps = float64(stats.NodesEvaluated) / stats.Duration.Seconds()
	}
	log.Printf("[ai:%s] t=%dms depth=%d nodes=%d nps=%.0f best=%.1f",
		tag,
		stats.Duration.Milliseconds(),
		stats.Depth,
		stats.NodesEvaluated,
		nps,
		stats.BestScore,
	)
}
