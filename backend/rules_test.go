package main

import "testing"

// parseBoard builds a position from 8 rows of 8 runes: 'X' black,
// 'O' white, '.' empty. Row 0 is y=0.
func parseBoard(t *testing.T, rows ...string) Board {
	t.Helper()
	if len(rows) != BoardSize {
		t.Fatalf("parseBoard wants %d rows, got %d", BoardSize, len(rows))
	}
	board := Board{}
	for y, row := range rows {
		if len(row) != BoardSize {
			t.Fatalf("row %d has %d cells, want %d", y, len(row), BoardSize)
		}
		for x, r := range row {
			switch r {
			case 'X':
				board.set(x, y, CellBlack)
			case 'O':
				board.set(x, y, CellWhite)
			case '.':
			default:
				t.Fatalf("bad cell %q at (%d,%d)", r, x, y)
			}
		}
	}
	return board
}

func containsMove(moves []Move, target Move) bool {
	for _, move := range moves {
		if move == target {
			return true
		}
	}
	return false
}

func TestNewBoardOpeningPosition(t *testing.T) {
	board := NewBoard()
	black, white := board.Counts()
	if black != 2 || white != 2 {
		t.Fatalf("expected 2-2 opening, got black=%d white=%d", black, white)
	}
	if board.At(3, 3) != CellWhite || board.At(4, 4) != CellWhite {
		t.Fatalf("expected white on (3,3) and (4,4)")
	}
	if board.At(4, 3) != CellBlack || board.At(3, 4) != CellBlack {
		t.Fatalf("expected black on (4,3) and (3,4)")
	}
	if board.Filled() != 4 || board.CountEmpty() != 60 {
		t.Fatalf("expected 4 stones on a fresh board, got %d", board.Filled())
	}
}

func TestOpeningLegalMovesForBlack(t *testing.T) {
	rules := NewRules()
	moves := rules.LegalMoves(NewBoard(), PlayerBlack)
	want := []Move{{X: 3, Y: 2}, {X: 2, Y: 3}, {X: 5, Y: 4}, {X: 4, Y: 5}}
	if len(moves) != len(want) {
		t.Fatalf("expected %d opening moves, got %v", len(want), moves)
	}
	for i, move := range want {
		if moves[i] != move {
			t.Fatalf("expected move %d to be %s, got %s (row-major order)", i, move, moves[i])
		}
	}
}

func TestApplyFirstMoveFlipsCenterStone(t *testing.T) {
	rules := NewRules()
	board := rules.Apply(NewBoard(), Move{X: 2, Y: 3}, PlayerBlack)
	black, white := board.Counts()
	if black != 4 || white != 1 {
		t.Fatalf("expected 4-1 after C4, got black=%d white=%d", black, white)
	}
	if board.At(3, 3) != CellBlack {
		t.Fatalf("expected (3,3) flipped to black")
	}
	if board.At(2, 3) != CellBlack {
		t.Fatalf("expected placed stone at (2,3)")
	}
}

func TestWhiteRepliesAfterFirstMove(t *testing.T) {
	rules := NewRules()
	board := rules.Apply(NewBoard(), Move{X: 2, Y: 3}, PlayerBlack)
	moves := rules.LegalMoves(board, PlayerWhite)
	want := []Move{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 2, Y: 4}}
	if len(moves) != len(want) {
		t.Fatalf("expected %d white replies, got %v", len(want), moves)
	}
	for _, move := range want {
		if !containsMove(moves, move) {
			t.Fatalf("expected %s to be a legal white reply, got %v", move, moves)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	rules := NewRules()
	board := NewBoard()
	before := board
	_ = rules.Apply(board, Move{X: 2, Y: 3}, PlayerBlack)
	if board != before {
		t.Fatalf("Apply mutated its input board")
	}
}

func TestApplyIllegalMoveReturnsInputUnchanged(t *testing.T) {
	rules := NewRules()
	board := NewBoard()
	// (0,0) flips nothing from the opening position.
	after := rules.Apply(board, Move{X: 0, Y: 0}, PlayerBlack)
	if after != board {
		t.Fatalf("expected illegal move to leave the board unchanged")
	}
}

func TestFlipsCollectsMultipleDirections(t *testing.T) {
	rules := NewRules()
	board := parseBoard(t,
		"XOO.....",
		"...O....",
		"...X....",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	flips := rules.Flips(board, Move{X: 3, Y: 0}, PlayerBlack)
	if len(flips) != 3 {
		t.Fatalf("expected 3 flips across two rays, got %v", flips)
	}
	for _, f := range []Move{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 1}} {
		if !containsMove(flips, f) {
			t.Fatalf("expected %s among flips, got %v", f, flips)
		}
	}
}

func TestFlipsRequiresTerminatingStone(t *testing.T) {
	rules := NewRules()
	// The white run reaches the edge with no black stone behind it.
	board := parseBoard(t,
		".OOOOOOO",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	if flips := rules.Flips(board, Move{X: 0, Y: 0}, PlayerBlack); len(flips) != 0 {
		t.Fatalf("expected no flips for an unterminated run, got %v", flips)
	}
}

func TestIsLegalReportsReason(t *testing.T) {
	rules := NewRules()
	board := NewBoard()

	if ok, reason := rules.IsLegal(board, Move{X: -1, Y: 3}, PlayerBlack); ok || reason != "out of bounds" {
		t.Fatalf("expected out of bounds, got ok=%v reason=%q", ok, reason)
	}
	if ok, reason := rules.IsLegal(board, Move{X: 3, Y: 3}, PlayerBlack); ok || reason != "occupied" {
		t.Fatalf("expected occupied, got ok=%v reason=%q", ok, reason)
	}
	if ok, reason := rules.IsLegal(board, Move{X: 0, Y: 0}, PlayerBlack); ok || reason != "no stones flipped" {
		t.Fatalf("expected no stones flipped, got ok=%v reason=%q", ok, reason)
	}
	if ok, reason := rules.IsLegal(board, Move{X: 2, Y: 3}, PlayerBlack); !ok || reason != "" {
		t.Fatalf("expected C4 to be legal, got ok=%v reason=%q", ok, reason)
	}
}

// stuckWhiteBoard is a running position where White has no legal move
// while Black still does.
func stuckWhiteBoard(t *testing.T) Board {
	t.Helper()
	return parseBoard(t,
		"XO......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
}

func TestMustPassWithoutGameOver(t *testing.T) {
	rules := NewRules()
	board := stuckWhiteBoard(t)
	if !rules.MustPass(board, PlayerWhite) {
		t.Fatalf("expected white to be stuck")
	}
	if rules.MustPass(board, PlayerBlack) {
		t.Fatalf("expected black to have a move")
	}
	if rules.IsTerminal(board) {
		t.Fatalf("position is not terminal while black can move")
	}
}

func TestIsTerminalOnFullBoard(t *testing.T) {
	rules := NewRules()
	board := parseBoard(t,
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"OOOOOOOO",
		"OOOOOOOO",
		"OOOOOOOO",
		"XXXXXXXX",
	)
	if !rules.IsTerminal(board) {
		t.Fatalf("expected full board to be terminal")
	}
	winner, ok := rules.Winner(board)
	if !ok || winner != PlayerBlack {
		t.Fatalf("expected black winner, got winner=%v ok=%v", winner, ok)
	}
}

func TestWinnerDrawOnEvenSplit(t *testing.T) {
	rules := NewRules()
	board := parseBoard(t,
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"OOOOOOOO",
		"OOOOOOOO",
		"OOOOOOOO",
		"OOOOOOOO",
	)
	if _, ok := rules.Winner(board); ok {
		t.Fatalf("expected a draw on 32-32")
	}
}

// TestSelfPlayConservation plays a full game taking the first legal move
// every ply and checks the bookkeeping that every Othello game obeys:
// each move adds exactly one stone and flips at least one, and the game
// reaches a terminal position.
func TestSelfPlayConservation(t *testing.T) {
	rules := NewRules()
	board := NewBoard()
	toMove := PlayerBlack

	for ply := 0; ply < 200; ply++ {
		if rules.IsTerminal(board) {
			if board.Filled() < 4 {
				t.Fatalf("terminal board lost stones")
			}
			return
		}
		moves := rules.LegalMoves(board, toMove)
		if len(moves) == 0 {
			toMove = toMove.Opponent()
			continue
		}
		move := moves[0]
		flips := rules.Flips(board, move, toMove)
		if len(flips) == 0 {
			t.Fatalf("legal move %s produced no flips at ply %d", move, ply)
		}
		filledBefore := board.Filled()
		board = rules.Apply(board, move, toMove)
		if board.Filled() != filledBefore+1 {
			t.Fatalf("expected one stone added at ply %d, got %d -> %d", ply, filledBefore, board.Filled())
		}
		black, white := board.Counts()
		if black+white != board.Filled() {
			t.Fatalf("stone counts disagree with filled cells at ply %d", ply)
		}
		toMove = toMove.Opponent()
	}
	t.Fatalf("game did not terminate within 200 plies")
}
