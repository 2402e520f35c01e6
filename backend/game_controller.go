package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// GameController is the single entry point the HTTP layer talks to. It
// serializes all access to the session and drives the AI seats from
// Tick. The AI workers themselves run outside the lock; only starting,
// stopping and harvesting them happens under it.
type GameController struct {
	mu               sync.Mutex
	session          *GameSession
	black            IPlayer
	white            IPlayer
	hintTT           *TranspositionTable
	passPendingSince time.Time
}

func NewGameController(mode GameMode) *GameController {
	gc := &GameController{
		session: NewGameSession(mode),
		hintTT:  NewTranspositionTable(),
	}
	gc.seatPlayersLocked(mode, nil, nil)
	return gc
}

func (gc *GameController) seatPlayersLocked(mode GameMode, blackWeights, whiteWeights *EvalWeights) {
	newSeat := func(aiSide bool, w *EvalWeights) IPlayer {
		if !aiSide {
			return NewHumanPlayer()
		}
		if w != nil {
			return NewWeightedAIPlayer(*w)
		}
		return NewAIPlayer()
	}
	gc.black = newSeat(mode.AIPlays(PlayerBlack), blackWeights)
	gc.white = newSeat(mode.AIPlays(PlayerWhite), whiteWeights)
}

func (gc *GameController) seatFor(player Player) IPlayer {
	if player == PlayerBlack {
		return gc.black
	}
	return gc.white
}

func (gc *GameController) cancelThinkingLocked() {
	if ai, ok := gc.black.(*AIPlayer); ok {
		ai.StopThinking()
	}
	if ai, ok := gc.white.(*AIPlayer); ok {
		ai.StopThinking()
	}
	gc.passPendingSince = time.Time{}
}

func (gc *GameController) afterChangeLocked() {
	gc.passPendingSince = time.Time{}
	config := GetConfig()
	if config.AutosaveEnabled {
		if err := SaveRecordFile(config.SavePath, ToRecord(gc.session.state)); err != nil {
			log.Printf("[game] autosave failed: %v", err)
		}
	}
}

// NewGame cancels any running search, resets the board and reseats the
// players. Optional per-color weights pin evaluation coefficients for AI
// seats, which is how head-to-head weight trials are set up.
func (gc *GameController) NewGame(mode GameMode, blackWeights, whiteWeights *EvalWeights) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.cancelThinkingLocked()
	gc.session.Reset(mode)
	gc.seatPlayersLocked(mode, blackWeights, whiteWeights)
	gc.hintTT.Clear()
	log.Printf("[game] new game mode=%s", mode)
	gc.afterChangeLocked()
	return nil
}

// SetMode reseats the players around the current position. Board and
// history stay as they are; an AI seated onto the side to move picks the
// game up on the next tick. Optional weights pin AI seats the same way
// NewGame does, which lets a seeded position be handed to a weight trial.
func (gc *GameController) SetMode(mode GameMode, blackWeights, whiteWeights *EvalWeights) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if mode == gc.session.Mode() && blackWeights == nil && whiteWeights == nil {
		return nil
	}
	gc.cancelThinkingLocked()
	gc.session.SetMode(mode)
	gc.seatPlayersLocked(mode, blackWeights, whiteWeights)
	log.Printf("[game] mode=%s", mode)
	gc.afterChangeLocked()
	return nil
}

// ApplyHumanMove plays a move coming in over the API for the side to
// move. Rejected when that side is an AI seat.
func (gc *GameController) ApplyHumanMove(move Move) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	mover := gc.session.CurrentPlayer()
	if !gc.seatFor(mover).IsHuman() {
		return fmt.Errorf("%w: %s is played by the AI", ErrWrongTurn, mover)
	}
	if err := gc.session.MakeMove(move); err != nil {
		return err
	}
	log.Printf("[game] %s plays %s", mover, move)
	gc.afterChangeLocked()
	return nil
}

// PassTurn passes for a stuck human. AI seats pass on their own through
// the tick loop.
func (gc *GameController) PassTurn() error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	mover := gc.session.CurrentPlayer()
	if !gc.seatFor(mover).IsHuman() {
		return fmt.Errorf("%w: %s is played by the AI", ErrWrongTurn, mover)
	}
	if err := gc.session.PassTurn(); err != nil {
		return err
	}
	log.Printf("[game] %s passes", mover)
	gc.afterChangeLocked()
	return nil
}

func undoStepsDefault(mode GameMode) int {
	// Against the AI one click takes back both the AI's reply and your
	// own move; otherwise a single ply.
	if mode == ModeAIWhite || mode == ModeAIBlack {
		return 2
	}
	return 1
}

// Undo takes back up to steps plies (mode default when steps <= 0) and
// reports how many it took. Any in-flight search is cancelled first so a
// stale move cannot land on the rewound position.
func (gc *GameController) Undo(steps int) int {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if steps <= 0 {
		steps = undoStepsDefault(gc.session.Mode())
	}
	gc.cancelThinkingLocked()
	done := gc.session.Undo(steps)
	if done > 0 {
		log.Printf("[game] undo %d", done)
		gc.afterChangeLocked()
	}
	return done
}

func (gc *GameController) Redo(steps int) int {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if steps <= 0 {
		steps = undoStepsDefault(gc.session.Mode())
	}
	gc.cancelThinkingLocked()
	done := gc.session.Redo(steps)
	if done > 0 {
		log.Printf("[game] redo %d", done)
		gc.afterChangeLocked()
	}
	return done
}

// Tick advances the game by at most one event: starting or harvesting an
// AI search, or auto-passing a stuck side once the pass banner has been
// up long enough. Returns true when the position changed.
func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.session.IsGameOver() {
		return false
	}

	state := gc.session.State()
	if gc.session.MustPass() {
		if gc.passPendingSince.IsZero() {
			gc.passPendingSince = time.Now()
			return false
		}
		delay := time.Duration(GetConfig().AutoPassDelayMs) * time.Millisecond
		if time.Since(gc.passPendingSince) < delay {
			return false
		}
		if err := gc.session.PassTurn(); err != nil {
			log.Printf("[game] auto-pass failed: %v", err)
			gc.passPendingSince = time.Time{}
			return false
		}
		log.Printf("[game] %s passes", state.ToMove)
		gc.afterChangeLocked()
		return true
	}
	gc.passPendingSince = time.Time{}

	ai, ok := gc.seatFor(state.ToMove).(*AIPlayer)
	if !ok {
		return false
	}
	if ai.HasMoveReady() {
		move, hasMove := ai.TakeMove()
		if !hasMove {
			return false
		}
		if err := gc.session.MakeMove(move); err != nil {
			log.Printf("[game] dropping stale AI move %s: %v", move, err)
			return false
		}
		log.Printf("[game] %s plays %s", state.ToMove, move)
		gc.afterChangeLocked()
		return true
	}
	if !ai.IsThinking() {
		ai.StartThinking(state, gc.session.Rules())
	}
	return false
}

// Hint searches the current position at hint depth without touching the
// game. Runs outside the controller lock so a slow hint never stalls the
// tick loop; its table persists, so repeated asks get cheaper.
func (gc *GameController) Hint() (Move, bool) {
	gc.mu.Lock()
	state := gc.session.State()
	over := gc.session.IsGameOver()
	gc.mu.Unlock()
	if over {
		return noMove, false
	}
	config := GetConfig()
	stats := &SearchStats{Start: time.Now()}
	move, ok := FindBestMove(state.Board, state.ToMove, SearchRequest{
		Depth:       config.HintDepth,
		TimeLimitMs: config.AiTimeBudgetMs,
		Weights:     config.Weights,
		TT:          gc.hintTT,
		Stats:       stats,
	})
	if config.AiLogSearchStats {
		logSearchStats("hint", stats, config.HintDepth, gc.hintTT)
	}
	return move, ok
}

// CancelSearches interrupts any running search and blocks until the
// workers have stopped. Called when settings change, so they apply from
// the next move on, and on shutdown.
func (gc *GameController) CancelSearches() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.cancelThinkingLocked()
}

// RestoreFromDisk resumes the autosaved game if a readable save exists.
// A missing or corrupt save leaves the fresh game in place.
func (gc *GameController) RestoreFromDisk(path string) bool {
	record, err := LoadRecordFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[game] ignoring save %s: %v", path, err)
		}
		return false
	}
	state, err := RestoreRecord(record)
	if err != nil {
		log.Printf("[game] ignoring save %s: %v", path, err)
		return false
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.cancelThinkingLocked()
	gc.session.Restore(state)
	gc.seatPlayersLocked(state.Mode, nil, nil)
	gc.hintTT.Clear()
	log.Printf("[game] restored save mode=%s to_move=%s", state.Mode, state.ToMove)
	return true
}

// ControllerSnapshot is everything the status DTO needs, read in one
// critical section so the fields are mutually consistent.
type ControllerSnapshot struct {
	State      GameState
	LegalMoves []Move
	MustPass   bool
	GameOver   bool
	Winner     Player
	HasWinner  bool
	AiThinking bool
	CanUndo    bool
	CanRedo    bool
	MovesText  string
}

func (gc *GameController) Snapshot() ControllerSnapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	snap := ControllerSnapshot{
		State:      gc.session.State(),
		LegalMoves: gc.session.LegalMoves(),
		MustPass:   gc.session.MustPass(),
		GameOver:   gc.session.IsGameOver(),
		AiThinking: gc.aiThinkingLocked(),
		CanUndo:    gc.session.CanUndo(),
		CanRedo:    gc.session.CanRedo(),
		MovesText:  gc.session.MovesText(),
	}
	if snap.GameOver {
		snap.Winner, snap.HasWinner = gc.session.Winner()
	}
	return snap
}

func (gc *GameController) aiThinkingLocked() bool {
	if ai, ok := gc.seatFor(gc.session.CurrentPlayer()).(*AIPlayer); ok {
		return ai.IsThinking()
	}
	return false
}

// CacheStats exposes the transposition tables of both seats plus the
// hint table.
type CacheStats struct {
	Black TTStats `json:"black"`
	White TTStats `json:"white"`
	Hint  TTStats `json:"hint"`
}

func (gc *GameController) CacheStats() CacheStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	stats := CacheStats{Hint: gc.hintTT.Stats()}
	if ai, ok := gc.black.(*AIPlayer); ok {
		stats.Black = ai.TableStats()
	}
	if ai, ok := gc.white.(*AIPlayer); ok {
		stats.White = ai.TableStats()
	}
	return stats
}

func (gc *GameController) ClearCaches() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if ai, ok := gc.black.(*AIPlayer); ok {
		ai.ResetTable()
	}
	if ai, ok := gc.white.(*AIPlayer); ok {
		ai.ResetTable()
	}
	gc.hintTT.Clear()
	log.Printf("[ai:cache] cleared transposition tables")
}
