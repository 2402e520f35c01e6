package main

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// AIPlayer runs searches on a background goroutine so the HTTP loop never
// blocks on thinking. Each instance owns its transposition table, which
// keeps two AI seats with different weights from poisoning each other's
// entries. StartThinking, StopThinking and TakeMove are meant to be
// called from a single driver (the controller tick); only the published
// flags are safe to read from anywhere.
type AIPlayer struct {
	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  Move
	readyOk    bool
	tt         *TranspositionTable
	weights    *EvalWeights
}

func NewAIPlayer() *AIPlayer {
	return &AIPlayer{tt: NewTranspositionTable()}
}

// NewWeightedAIPlayer pins the evaluation coefficients for this seat so
// later settings changes do not touch it. Head-to-head weight trials hang
// a different candidate on each color this way.
func NewWeightedAIPlayer(weights EvalWeights) *AIPlayer {
	w := weights
	return &AIPlayer{tt: NewTranspositionTable(), weights: &w}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) effectiveWeights(config Config) EvalWeights {
	if a.weights != nil {
		return *a.weights
	}
	return config.Weights
}

// ChooseMove searches synchronously. ok is false when the side to move
// has no legal move and must pass.
func (a *AIPlayer) ChooseMove(state GameState, rules Rules) (Move, bool) {
	config := GetConfig()
	stats := &SearchStats{Start: time.Now()}
	move, ok := FindBestMove(state.Board, state.ToMove, SearchRequest{
		Depth:       config.AiDepth,
		TimeLimitMs: config.AiTimeBudgetMs,
		Weights:     a.effectiveWeights(config),
		TT:          a.tt,
		Stats:       stats,
	})
	if config.AiLogSearchStats {
		logSearchStats("choose", stats, config.AiDepth, a.tt)
	}
	return move, ok
}

// StartThinking kicks off a background search for the given position.
// A no-op while a previous search is still running.
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
	config := GetConfig()
	go func() {
		defer close(done)
		stats := &SearchStats{Start: time.Now()}
		move, ok := FindBestMove(stateCopy.Board, stateCopy.ToMove, SearchRequest{
			Depth:       config.AiDepth,
			TimeLimitMs: config.AiTimeBudgetMs,
			Weights:     a.effectiveWeights(config),
			TT:          a.tt,
			ShouldStop:  func() bool { return a.stopSignal.Load() },
			Stats:       stats,
		})
		a.waitMinThink(stats.Start, config.AiMinThinkMs)
		if config.AiLogSearchStats {
			logSearchStats("think", stats, config.AiDepth, a.tt)
		}
		if a.stopSignal.Load() {
			a.moveReady.Store(false)
			a.thinking.Store(false)
			return
		}
		a.moveMutex.Lock()
		a.readyMove = move
		a.readyOk = ok
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
	}()
}

// waitMinThink pads instant answers so the UI shows the AI "thinking" for
// at least the configured time. Interruptible by the stop signal.
func (a *AIPlayer) waitMinThink(start time.Time, minMs int) {
	if minMs <= 0 {
		return
	}
	deadline := start.Add(time.Duration(minMs) * time.Millisecond)
	for time.Now().Before(deadline) && !a.stopSignal.Load() {
		time.Sleep(5 * time.Millisecond)
	}
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

// TakeMove consumes the published result. ok is false when the searched
// position had no legal move, meaning the side must pass.
func (a *AIPlayer) TakeMove() (Move, bool) {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove, a.readyOk
}

// StopThinking interrupts the worker and blocks until it has exited. Any
// move it was about to publish is dropped, so callers can safely reset or
// replace the game afterwards.
func (a *AIPlayer) StopThinking() {
	a.stopSignal.Store(true)
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.stopSignal.Store(false)
	a.moveReady.Store(false)
}

func (a *AIPlayer) ResetTable() {
	if a.tt != nil {
		a.tt.Clear()
	}
}

func (a *AIPlayer) TableStats() TTStats {
	if a.tt == nil {
		return TTStats{}
	}
	return a.tt.Stats()
}

func logSearchStats(tag string, stats *SearchStats, depth int, tt *TranspositionTable) {
	if stats == nil {
		return
	}
	elapsed := time.Since(stats.Start)
	nps := 0.0
	if elapsed > 0 {
		nps = float64(stats.Nodes) / elapsed.Seconds()
	}
	hitRate := 0.0
	if stats.TTProbes > 0 {
		hitRate = float64(stats.TTHits) * 100.0 / float64(stats.TTProbes)
	}
	size := 0
	if tt != nil {
		size = tt.Len()
	}
	parts := make([]string, 0, len(stats.DepthDurations))
	for _, d := range stats.DepthDurations {
		parts = append(parts, fmt.Sprintf("%dms", d.Milliseconds()))
	}
	log.Printf("[ai:%s] t=%dms depth=%d completed=%d aborted=%v nodes=%d leaves=%d nps=%.0f tt_size=%d tt_probe=%d tt_hit=%d tt_hit_rate=%.1f%% tt_cutoff=%d ab_cutoff=%d depth_times=[%s]",
		tag,
		elapsed.Milliseconds(),
		depth,
		stats.CompletedDepth,
		stats.Aborted,
		stats.Nodes,
		stats.Leaves,
		nps,
		size,
		stats.TTProbes,
		stats.TTHits,
		hitRate,
		stats.TTCutoffs,
		stats.Cutoffs,
		strings.Join(parts, ","))
}
