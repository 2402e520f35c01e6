package main

import (
	"testing"
	"time"
)

func TestFindBestMoveReturnsLegalMove(t *testing.T) {
	rules := NewRules()
	board := NewBoard()
	move, ok := FindBestMove(board, PlayerBlack, SearchRequest{
		Depth:   5,
		Weights: DefaultEvalWeights(),
		TT:      NewTranspositionTable(),
	})
	if !ok {
		t.Fatalf("expected a move from the opening position")
	}
	if legal, reason := rules.IsLegal(board, move, PlayerBlack); !legal {
		t.Fatalf("search returned illegal move %s: %s", move, reason)
	}
}

func TestFindBestMoveIsDeterministic(t *testing.T) {
	board, toMove := playPlies(NewRules(), 6)
	request := func() SearchRequest {
		return SearchRequest{
			Depth:   4,
			Weights: DefaultEvalWeights(),
			TT:      NewTranspositionTable(),
		}
	}
	first, ok1 := FindBestMove(board, toMove, request())
	second, ok2 := FindBestMove(board, toMove, request())
	if !ok1 || !ok2 {
		t.Fatalf("expected moves from a midgame position")
	}
	if first != second {
		t.Fatalf("expected identical moves from identical searches, got %s then %s", first, second)
	}
}

func TestFindBestMoveNoLegalMoves(t *testing.T) {
	board := stuckWhiteBoard(t)
	move, ok := FindBestMove(board, PlayerWhite, SearchRequest{
		Depth:   3,
		Weights: DefaultEvalWeights(),
	})
	if ok {
		t.Fatalf("expected ok=false for a stuck side, got move %s", move)
	}
}

func TestFindBestMovePlaysOnlyRemainingCell(t *testing.T) {
	// One empty cell left; playing it flips the lone white stone and
	// finishes the game.
	board := parseBoard(t,
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXO.",
	)
	stats := &SearchStats{}
	move, ok := FindBestMove(board, PlayerBlack, SearchRequest{
		Depth:   6,
		Weights: DefaultEvalWeights(),
		TT:      NewTranspositionTable(),
		Stats:   stats,
	})
	if !ok {
		t.Fatalf("expected the forced move to be found")
	}
	if (move != Move{X: 7, Y: 7}) {
		t.Fatalf("expected H8, got %s", move)
	}
	if stats.CompletedDepth < 1 {
		t.Fatalf("expected at least depth 1 to complete, got %d", stats.CompletedDepth)
	}
}

func TestFindBestMoveStopSignalFallsBackToOrdering(t *testing.T) {
	stats := &SearchStats{}
	move, ok := FindBestMove(NewBoard(), PlayerBlack, SearchRequest{
		Depth:      6,
		Weights:    DefaultEvalWeights(),
		ShouldStop: func() bool { return true },
		Stats:      stats,
	})
	if !ok {
		t.Fatalf("expected a fallback move even when stopped immediately")
	}
	if !stats.Aborted || stats.CompletedDepth != 0 {
		t.Fatalf("expected an aborted search with no completed depth, got aborted=%v depth=%d", stats.Aborted, stats.CompletedDepth)
	}
	// All four opening moves tie on ordering, so scan order decides.
	if (move != Move{X: 3, Y: 2}) {
		t.Fatalf("expected the first statically ordered move D3, got %s", move)
	}
}

func TestFindBestMoveExpiredDeadline(t *testing.T) {
	stats := &SearchStats{Start: time.Now().Add(-time.Hour)}
	move, ok := FindBestMove(NewBoard(), PlayerBlack, SearchRequest{
		Depth:       6,
		TimeLimitMs: 1,
		Weights:     DefaultEvalWeights(),
		Stats:       stats,
	})
	if !ok {
		t.Fatalf("expected a fallback move under an expired deadline")
	}
	if !stats.Aborted {
		t.Fatalf("expected the search to report an abort")
	}
	if !move.IsValid() {
		t.Fatalf("expected a board move, got %s", move)
	}
}

func TestSearchReusesTranspositionTable(t *testing.T) {
	board, toMove := playPlies(NewRules(), 8)
	tt := NewTranspositionTable()
	first, ok := FindBestMove(board, toMove, SearchRequest{Depth: 4, Weights: DefaultEvalWeights(), TT: tt})
	if !ok {
		t.Fatalf("expected a move on the first search")
	}
	if tt.Len() == 0 {
		t.Fatalf("expected the table to hold entries after a search")
	}

	stats := &SearchStats{}
	second, ok := FindBestMove(board, toMove, SearchRequest{Depth: 4, Weights: DefaultEvalWeights(), TT: tt, Stats: stats})
	if !ok {
		t.Fatalf("expected a move on the re-search")
	}
	if stats.TTHits == 0 {
		t.Fatalf("expected the re-search to hit the table")
	}
	if first != second {
		t.Fatalf("expected the cached re-search to agree, got %s then %s", first, second)
	}
}

// searchValue runs a single fixed-depth full-window search with a fresh
// table and returns the exact value of the position for the side to move.
func searchValue(t *testing.T, board Board, player Player, depth int, weights EvalWeights) float64 {
	t.Helper()
	s := &searchContext{
		rules:   NewRules(),
		tt:      NewTranspositionTable(),
		weights: weights,
		stats:   &SearchStats{},
	}
	value, ok := s.negamax(board, player, ComputeHash(board, player), depth, -evalInf, evalInf, nil)
	if !ok {
		t.Fatalf("expected the fixed-depth search to finish")
	}
	return value
}

func TestSearchValueColorSwapped(t *testing.T) {
	// Swapping every stone's owner and the side to move gives the same
	// game seen from the other chair, so the search value is unchanged.
	weights := DefaultEvalWeights()
	for _, plies := range []int{0, 5, 12} {
		board, toMove := playPlies(NewRules(), plies)
		swapped := Board{}
		for y := 0; y < BoardSize; y++ {
			for x := 0; x < BoardSize; x++ {
				swapped.set(x, y, -board.At(x, y))
			}
		}
		value := searchValue(t, board, toMove, 3, weights)
		mirror := searchValue(t, swapped, toMove.Opponent(), 3, weights)
		if value != mirror {
			t.Fatalf("after %d plies expected matching values, got %v and %v", plies, value, mirror)
		}
	}
}

func TestDeepeningAgreesWithDirectSearch(t *testing.T) {
	// Without a deadline the deepening driver must return a move worth
	// exactly the value a single search at the final depth computes.
	rules := NewRules()
	weights := DefaultEvalWeights()
	const depth = 3
	for _, plies := range []int{0, 7} {
		board, toMove := playPlies(rules, plies)
		move, ok := FindBestMove(board, toMove, SearchRequest{
			Depth:   depth,
			Weights: weights,
			TT:      NewTranspositionTable(),
		})
		if !ok {
			t.Fatalf("after %d plies expected a move", plies)
		}
		direct := searchValue(t, board, toMove, depth, weights)
		flips := rules.Flips(board, move, toMove)
		child := applyMoveWithFlips(board, move, flips, toMove)
		achieved := -searchValue(t, child, toMove.Opponent(), depth-1, weights)
		if achieved != direct {
			t.Fatalf("after %d plies expected a move worth %v, got %v", plies, direct, achieved)
		}
	}
}

func TestOrderMovesPriorities(t *testing.T) {
	moves := []Move{
		{X: 1, Y: 1}, // corner-adjacent, worst
		{X: 3, Y: 3}, // center
		{X: 0, Y: 0}, // corner
		{X: 5, Y: 3}, // near center
	}
	ordered := orderMoves(append([]Move(nil), moves...), noMove, false)
	if (ordered[0] != Move{X: 0, Y: 0}) {
		t.Fatalf("expected the corner first, got %s", ordered[0])
	}
	if (ordered[len(ordered)-1] != Move{X: 1, Y: 1}) {
		t.Fatalf("expected the X-square last, got %s", ordered[len(ordered)-1])
	}
	if (ordered[1] != Move{X: 3, Y: 3}) {
		t.Fatalf("expected the center move second, got %s", ordered[1])
	}

	// A table move outranks even a corner.
	ordered = orderMoves(append([]Move(nil), moves...), Move{X: 5, Y: 3}, true)
	if (ordered[0] != Move{X: 5, Y: 3}) {
		t.Fatalf("expected the table move first, got %s", ordered[0])
	}
}

func TestCenterDistanceSymmetry(t *testing.T) {
	// The four central squares are equally close, the four corners
	// equally far.
	center := centerDistance(Move{X: 3, Y: 3})
	for _, m := range []Move{{X: 4, Y: 3}, {X: 3, Y: 4}, {X: 4, Y: 4}} {
		if centerDistance(m) != center {
			t.Fatalf("expected %s at center distance %d, got %d", m, center, centerDistance(m))
		}
	}
	corner := centerDistance(Move{X: 0, Y: 0})
	for _, m := range []Move{{X: 7, Y: 0}, {X: 0, Y: 7}, {X: 7, Y: 7}} {
		if centerDistance(m) != corner {
			t.Fatalf("expected %s at corner distance %d, got %d", m, corner, centerDistance(m))
		}
	}
	if center >= corner {
		t.Fatalf("expected center closer than corner, got %d >= %d", center, corner)
	}
}
