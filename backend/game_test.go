package main

import (
	"errors"
	"testing"
)

// stuckWhiteSession returns a running pvp game where White is to move
// with no legal move.
func stuckWhiteSession(t *testing.T) *GameSession {
	t.Helper()
	state := NewGameState(ModePVP)
	state.Board = stuckWhiteBoard(t)
	state.ToMove = PlayerWhite
	session := NewGameSession(ModePVP)
	session.Restore(state)
	return session
}

func TestMakeMoveRejectsIllegalMoves(t *testing.T) {
	session := NewGameSession(ModePVP)

	if err := session.MakeMove(Move{X: -1, Y: 0}); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove for out of bounds, got %v", err)
	}
	if err := session.MakeMove(Move{X: 3, Y: 3}); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove for occupied cell, got %v", err)
	}
	if err := session.MakeMove(Move{X: 0, Y: 0}); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove for a non-flipping move, got %v", err)
	}
	if session.CurrentPlayer() != PlayerBlack {
		t.Fatalf("expected rejected moves to leave black on turn")
	}
}

func TestMakeMoveRecordsNotationAndFlips(t *testing.T) {
	session := NewGameSession(ModePVP)
	if err := session.MakeMove(Move{X: 2, Y: 3}); err != nil {
		t.Fatalf("expected C4 to be playable: %v", err)
	}

	state := session.State()
	if state.ToMove != PlayerWhite {
		t.Fatalf("expected white on turn after black's move")
	}
	if !state.HasLastMove || (state.LastMove != Move{X: 2, Y: 3}) {
		t.Fatalf("expected last move C4, got %+v", state.LastMove)
	}
	if len(state.LastFlips) != 1 || (state.LastFlips[0] != Move{X: 3, Y: 3}) {
		t.Fatalf("expected D4 to be the flipped stone, got %v", state.LastFlips)
	}
	if session.MovesText() != "C4" {
		t.Fatalf("expected moves text C4, got %q", session.MovesText())
	}
}

func TestPassRejectedWithMovesAvailable(t *testing.T) {
	session := NewGameSession(ModePVP)
	if err := session.PassTurn(); !errors.Is(err, ErrCannotPass) {
		t.Fatalf("expected ErrCannotPass at the opening, got %v", err)
	}
}

func TestPassWhenStuck(t *testing.T) {
	session := stuckWhiteSession(t)
	if !session.MustPass() {
		t.Fatalf("expected a forced pass for white")
	}
	if err := session.PassTurn(); err != nil {
		t.Fatalf("expected pass to succeed: %v", err)
	}
	state := session.State()
	if state.ToMove != PlayerBlack {
		t.Fatalf("expected the turn back with black after the pass")
	}
	if state.PassStreak != 1 {
		t.Fatalf("expected pass streak 1, got %d", state.PassStreak)
	}
	if n := state.Notation; len(n) == 0 || n[len(n)-1] != passNotation {
		t.Fatalf("expected %q appended to the notation, got %v", passNotation, n)
	}
}

func TestMakeMoveOnFinishedGame(t *testing.T) {
	state := NewGameState(ModePVP)
	state.Board = parseBoard(t,
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
	)
	session := NewGameSession(ModePVP)
	session.Restore(state)

	if !session.IsGameOver() {
		t.Fatalf("expected a full board to end the game")
	}
	if err := session.MakeMove(Move{X: 0, Y: 0}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if err := session.PassTurn(); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver on pass, got %v", err)
	}
}

func playFirstLegal(t *testing.T, session *GameSession) Move {
	t.Helper()
	moves := session.LegalMoves()
	if len(moves) == 0 {
		t.Fatalf("expected a legal move for %s", session.CurrentPlayer())
	}
	if err := session.MakeMove(moves[0]); err != nil {
		t.Fatalf("expected %s to be playable: %v", moves[0], err)
	}
	return moves[0]
}

func TestUndoRedoRoundTrip(t *testing.T) {
	session := NewGameSession(ModePVP)
	playFirstLegal(t, session)
	afterOne := session.State()
	playFirstLegal(t, session)
	playFirstLegal(t, session)
	afterThree := session.State()

	if done := session.Undo(2); done != 2 {
		t.Fatalf("expected to undo 2 plies, got %d", done)
	}
	if session.State().Board != afterOne.Board {
		t.Fatalf("expected the position after move 1 back on the board")
	}
	if !session.CanRedo() {
		t.Fatalf("expected redo to be available after undo")
	}

	if done := session.Redo(2); done != 2 {
		t.Fatalf("expected to redo 2 plies, got %d", done)
	}
	if session.State().Board != afterThree.Board {
		t.Fatalf("expected the position after move 3 restored")
	}

	// Asking for more than exists rewinds to the start and reports the
	// partial count.
	if done := session.Undo(99); done != 3 {
		t.Fatalf("expected 3 plies to unwind, got %d", done)
	}
	if session.State().Board != NewBoard() {
		t.Fatalf("expected the opening position after a full rewind")
	}
}

func TestUndoKeepsCurrentMode(t *testing.T) {
	session := NewGameSession(ModePVP)
	playFirstLegal(t, session)
	session.SetMode(ModeAIWhite)

	if done := session.Undo(1); done != 1 {
		t.Fatalf("expected one ply undone, got %d", done)
	}
	if session.Mode() != ModeAIWhite {
		t.Fatalf("expected the mode switch to survive undo, got %s", session.Mode())
	}
	if done := session.Redo(1); done != 1 {
		t.Fatalf("expected one ply redone, got %d", done)
	}
	if session.Mode() != ModeAIWhite {
		t.Fatalf("expected the mode switch to survive redo, got %s", session.Mode())
	}
}

func TestNewMoveDiscardsRedo(t *testing.T) {
	session := NewGameSession(ModePVP)
	playFirstLegal(t, session)
	playFirstLegal(t, session)
	session.Undo(1)
	if !session.CanRedo() {
		t.Fatalf("expected redo available after undo")
	}
	playFirstLegal(t, session)
	if session.CanRedo() {
		t.Fatalf("expected a fresh move to clear the redo stack")
	}
}

func TestRestoreClearsHistory(t *testing.T) {
	session := NewGameSession(ModePVP)
	playFirstLegal(t, session)
	playFirstLegal(t, session)

	session.Restore(NewGameState(ModeAIBlack))
	if session.CanUndo() || session.CanRedo() {
		t.Fatalf("expected empty history after restore")
	}
	if session.Mode() != ModeAIBlack {
		t.Fatalf("expected the restored mode, got %s", session.Mode())
	}
	if session.State().Board != NewBoard() {
		t.Fatalf("expected the restored board")
	}
}

func TestGameStateCloneIsIndependent(t *testing.T) {
	state := NewGameState(ModePVP)
	state.Notation = []string{"C4"}
	state.LastFlips = []Move{{X: 3, Y: 3}}

	clone := state.Clone()
	state.Notation[0] = "XX"
	state.LastFlips[0] = Move{X: 0, Y: 0}

	if clone.Notation[0] != "C4" {
		t.Fatalf("expected the clone's notation to be independent")
	}
	if (clone.LastFlips[0] != Move{X: 3, Y: 3}) {
		t.Fatalf("expected the clone's flips to be independent")
	}
}

func TestModeSeatAssignments(t *testing.T) {
	cases := []struct {
		mode    GameMode
		blackAI bool
		whiteAI bool
	}{
		{ModePVP, false, false},
		{ModeAIWhite, false, true},
		{ModeAIBlack, true, false},
		{ModeAIVsAI, true, true},
	}
	for _, tc := range cases {
		if got := tc.mode.AIPlays(PlayerBlack); got != tc.blackAI {
			t.Fatalf("mode %s: expected black AI=%v, got %v", tc.mode, tc.blackAI, got)
		}
		if got := tc.mode.AIPlays(PlayerWhite); got != tc.whiteAI {
			t.Fatalf("mode %s: expected white AI=%v, got %v", tc.mode, tc.whiteAI, got)
		}
	}
	if GameMode("chess").Valid() {
		t.Fatalf("expected unknown modes to be invalid")
	}
}
