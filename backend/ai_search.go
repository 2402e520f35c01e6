package main

import (
	"sort"
	"time"
)

var noMove = Move{X: -1, Y: -1}

// SearchStats accumulates counters for one FindBestMove call. Callers
// that want the numbers pass a fresh struct in SearchRequest and read it
// after the search returns.
type SearchStats struct {
	Start          time.Time
	Nodes          uint64
	Leaves         uint64
	TTProbes       uint64
	TTHits         uint64
	TTCutoffs      uint64
	Cutoffs        uint64
	CompletedDepth int
	DepthDurations []time.Duration
	Aborted        bool
}

// SearchRequest bundles the knobs for one search. TT is shared across
// searches of the same game so later calls reuse earlier work; Stats and
// ShouldStop may be nil.
type SearchRequest struct {
	Depth       int
	TimeLimitMs int
	Weights     EvalWeights
	TT          *TranspositionTable
	ShouldStop  func() bool
	Stats       *SearchStats
}

type searchContext struct {
	rules       Rules
	tt          *TranspositionTable
	weights     EvalWeights
	deadline    time.Time
	hasDeadline bool
	shouldStop  func() bool
	stats       *SearchStats
}

func (s *searchContext) interrupted() bool {
	if s.shouldStop != nil && s.shouldStop() {
		return true
	}
	return s.hasDeadline && time.Now().After(s.deadline)
}

// FindBestMove picks a move for player with iterative deepening negamax.
// ok is false only when player has no legal move. Every depth restarts
// from a full window; a depth cut short by the time budget or a stop
// signal is discarded and the previous depth's answer stands, so the
// returned move always comes from a fully finished depth (or, if even
// depth 1 was interrupted, from the static move ordering).
func FindBestMove(board Board, player Player, req SearchRequest) (Move, bool) {
	rules := NewRules()
	moves := rules.LegalMoves(board, player)
	if len(moves) == 0 {
		return noMove, false
	}

	stats := req.Stats
	if stats == nil {
		stats = &SearchStats{}
	}
	if stats.Start.IsZero() {
		stats.Start = time.Now()
	}

	s := &searchContext{
		rules:      rules,
		tt:         req.TT,
		weights:    req.Weights,
		shouldStop: req.ShouldStop,
		stats:      stats,
	}
	if req.TimeLimitMs > 0 {
		s.deadline = stats.Start.Add(time.Duration(req.TimeLimitMs) * time.Millisecond)
		s.hasDeadline = true
	}

	hash := ComputeHash(board, player)

	ttBest, hasTTBest := ttBestMove(req.TT, hash)
	ordered := orderMoves(append([]Move(nil), moves...), ttBest, hasTTBest)
	best := ordered[0]

	maxDepth := max(req.Depth, 1)
	for depth := 1; depth <= maxDepth; depth++ {
		depthStart := time.Now()
		candidate := noMove
		_, ok := s.negamax(board, player, hash, depth, -evalInf, evalInf, &candidate)
		if !ok {
			stats.Aborted = true
			break
		}
		best = candidate
		stats.CompletedDepth = depth
		stats.DepthDurations = append(stats.DepthDurations, time.Since(depthStart))
	}
	return best, true
}

// negamax returns the value of the position for the side to move. The
// second return is false when the search was interrupted; partial results
// from an interrupted subtree are never used or stored. rootBest is
// non-nil only at the root of a deepening iteration, where the best move
// must be reported even when the table already knows the value.
func (s *searchContext) negamax(board Board, player Player, hash uint64, depth int, alpha, beta float64, rootBest *Move) (float64, bool) {
	if s.interrupted() {
		return 0, false
	}
	s.stats.Nodes++

	origAlpha, origBeta := alpha, beta

	ttBest := noMove
	hasTTBest := false
	if s.tt != nil {
		s.stats.TTProbes++
		if entry, ok := s.tt.Probe(hash); ok {
			s.stats.TTHits++
			if entry.HasBest {
				ttBest = entry.BestMove
				hasTTBest = true
			}
			if entry.Depth >= depth && rootBest == nil {
				switch entry.Flag {
				case TTExact:
					s.stats.TTCutoffs++
					return entry.Value, true
				case TTLower:
					alpha = max(alpha, entry.Value)
				case TTUpper:
					beta = min(beta, entry.Value)
				}
				if alpha >= beta {
					s.stats.TTCutoffs++
					return entry.Value, true
				}
			}
		}
	}

	if depth <= 0 || s.rules.IsTerminal(board) {
		s.stats.Leaves++
		return Evaluate(board, player, s.rules, s.weights), true
	}

	moves := s.rules.LegalMoves(board, player)
	if len(moves) == 0 {
		// Stuck side passes: same board, other player, one ply deeper.
		value, ok := s.negamax(board, player.Opponent(), HashAfterPass(hash), depth-1, -beta, -alpha, nil)
		if !ok {
			return 0, false
		}
		return -value, true
	}

	moves = orderMoves(moves, ttBest, hasTTBest)

	best := -evalInf
	bestMove := moves[0]
	for _, move := range moves {
		flips := s.rules.Flips(board, move, player)
		child := applyMoveWithFlips(board, move, flips, player)
		value, ok := s.negamax(child, player.Opponent(), HashAfterMove(hash, move, flips, player), depth-1, -beta, -alpha, nil)
		if !ok {
			return 0, false
		}
		value = -value
		if value > best {
			best = value
			bestMove = move
			if rootBest != nil {
				*rootBest = move
			}
		}
		alpha = max(alpha, value)
		if alpha >= beta {
			s.stats.Cutoffs++
			break
		}
	}

	if s.tt != nil {
		flag := TTExact
		switch {
		case best <= origAlpha:
			flag = TTUpper
		case best >= origBeta:
			flag = TTLower
		}
		s.tt.Store(hash, TTEntry{
			Value:    best,
			Depth:    depth,
			Flag:     flag,
			BestMove: bestMove,
			HasBest:  true,
		})
	}
	return best, true
}

// applyMoveWithFlips places the stone and turns over already computed
// flips, avoiding a second ray scan when the caller needs the flip list
// anyway for the incremental hash.
func applyMoveWithFlips(board Board, move Move, flips []Move, player Player) Board {
	stone := CellFromPlayer(player)
	board.set(move.X, move.Y, stone)
	for _, f := range flips {
		board.set(f.X, f.Y, stone)
	}
	return board
}

// orderMoves sorts candidates best-first: the table move, then corners,
// then the rest by distance to the board center, with corner-adjacent
// squares last. The sort is stable, so equal priorities keep board scan
// order and repeated searches stay deterministic.
func orderMoves(moves []Move, ttBest Move, hasTTBest bool) []Move {
	sort.SliceStable(moves, func(i, j int) bool {
		return moveOrderKey(moves[i], ttBest, hasTTBest) < moveOrderKey(moves[j], ttBest, hasTTBest)
	})
	return moves
}

func moveOrderKey(m Move, ttBest Move, hasTTBest bool) int {
	if hasTTBest && m == ttBest {
		return -1
	}
	if isCorner(m) {
		return 0
	}
	if isDangerCell(m) {
		return 1000 + centerDistance(m)
	}
	return 100 + centerDistance(m)
}

// centerDistance is the squared distance from the square to the board
// center, on a doubled grid so the center between four squares needs no
// fractions.
func centerDistance(m Move) int {
	dx := 2*m.X - (BoardSize - 1)
	dy := 2*m.Y - (BoardSize - 1)
	return dx*dx + dy*dy
}

func ttBestMove(tt *TranspositionTable, hash uint64) (Move, bool) {
	if tt == nil {
		return noMove, false
	}
	entry, ok := tt.Probe(hash)
	if !ok || !entry.HasBest {
		return noMove, false
	}
	return entry.BestMove, true
}
