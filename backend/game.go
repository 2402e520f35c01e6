package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMove = errors.New("invalid move")
	ErrCannotPass  = errors.New("cannot pass")
	ErrWrongTurn   = errors.New("not your turn")
	ErrGameOver    = errors.New("game over")
)

// GameSession owns one game: the live state plus undo and redo stacks.
// It is not safe for concurrent use; the controller serializes access.
type GameSession struct {
	rules Rules
	state GameState
	undo  []GameState
	redo  []GameState
}

func NewGameSession(mode GameMode) *GameSession {
	g := &GameSession{rules: NewRules()}
	g.Reset(mode)
	return g
}

func (g *GameSession) Reset(mode GameMode) {
	g.state.Reset(mode)
	g.undo = nil
	g.redo = nil
}

// State returns an independent snapshot of the current position.
func (g *GameSession) State() GameState {
	return g.state.Clone()
}

func (g *GameSession) Rules() Rules {
	return g.rules
}

func (g *GameSession) Mode() GameMode {
	return g.state.Mode
}

// SetMode changes who plays each color without touching the position.
// Mode is not part of game history, so this is not undoable.
func (g *GameSession) SetMode(mode GameMode) {
	g.state.Mode = mode
}

func (g *GameSession) CurrentPlayer() Player {
	return g.state.ToMove
}

// MakeMove plays a stone for the side to move. The pre-move position is
// pushed on the undo stack and the redo stack is discarded.
func (g *GameSession) MakeMove(move Move) error {
	if g.IsGameOver() {
		return fmt.Errorf("%w: no moves can be played", ErrGameOver)
	}
	ok, reason := g.rules.IsLegal(g.state.Board, move, g.state.ToMove)
	if !ok {
		return fmt.Errorf("%w: %s at %s", ErrInvalidMove, reason, move.Notation())
	}
	flips := g.rules.Flips(g.state.Board, move, g.state.ToMove)

	g.pushUndo()
	g.redo = nil

	stone := CellFromPlayer(g.state.ToMove)
	g.state.Board.set(move.X, move.Y, stone)
	for _, f := range flips {
		g.state.Board.set(f.X, f.Y, stone)
	}
	g.state.Notation = append(g.state.Notation, move.Notation())
	g.state.HasLastMove = true
	g.state.LastMove = move
	g.state.LastFlips = flips
	g.state.PassStreak = 0
	g.state.ToMove = g.state.ToMove.Opponent()
	return nil
}

// PassTurn hands the turn over. Only legal when the side to move is
// stuck; passing with a move available is an error.
func (g *GameSession) PassTurn() error {
	if g.IsGameOver() {
		return fmt.Errorf("%w: no moves can be played", ErrGameOver)
	}
	if g.rules.HasLegalMove(g.state.Board, g.state.ToMove) {
		return fmt.Errorf("%w: %s still has a legal move", ErrCannotPass, g.state.ToMove)
	}

	g.pushUndo()
	g.redo = nil

	g.state.Notation = append(g.state.Notation, passNotation)
	g.state.LastFlips = nil
	g.state.PassStreak++
	g.state.ToMove = g.state.ToMove.Opponent()
	return nil
}

func (g *GameSession) pushUndo() {
	g.undo = append(g.undo, g.state.Clone())
}

// Undo rewinds up to steps plies and reports how many it actually took.
// The current mode survives, it is a table setting rather than a move.
func (g *GameSession) Undo(steps int) int {
	done := 0
	for ; done < steps && len(g.undo) > 0; done++ {
		mode := g.state.Mode
		g.redo = append(g.redo, g.state.Clone())
		g.state = g.undo[len(g.undo)-1]
		g.undo = g.undo[:len(g.undo)-1]
		g.state.Mode = mode
	}
	return done
}

// Redo replays up to steps undone plies; the counterpart of Undo.
func (g *GameSession) Redo(steps int) int {
	done := 0
	for ; done < steps && len(g.redo) > 0; done++ {
		mode := g.state.Mode
		g.undo = append(g.undo, g.state.Clone())
		g.state = g.redo[len(g.redo)-1]
		g.redo = g.redo[:len(g.redo)-1]
		g.state.Mode = mode
	}
	return done
}

func (g *GameSession) CanUndo() bool {
	return len(g.undo) > 0
}

func (g *GameSession) CanRedo() bool {
	return len(g.redo) > 0
}

// Restore replaces the session with a loaded snapshot. Saves carry no
// history, so undo and redo start empty.
func (g *GameSession) Restore(state GameState) {
	g.state = state.Clone()
	g.undo = nil
	g.redo = nil
}

func (g *GameSession) LegalMoves() []Move {
	return g.rules.LegalMoves(g.state.Board, g.state.ToMove)
}

// MustPass reports that the side to move is stuck while the game itself
// is still running.
func (g *GameSession) MustPass() bool {
	return !g.IsGameOver() && g.rules.MustPass(g.state.Board, g.state.ToMove)
}

func (g *GameSession) IsGameOver() bool {
	return g.rules.IsTerminal(g.state.Board)
}

func (g *GameSession) Score() (black, white int) {
	return g.rules.Score(g.state.Board)
}

// Winner is meaningful only once IsGameOver is true; ok=false is a draw.
func (g *GameSession) Winner() (Player, bool) {
	return g.rules.Winner(g.state.Board)
}

// MovesText renders the move list as one spaced line, the clipboard
// format of the web UI.
func (g *GameSession) MovesText() string {
	return strings.Join(g.state.Notation, " ")
}
