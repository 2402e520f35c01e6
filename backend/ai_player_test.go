package main

import (
	"testing"
	"time"
)

func waitForMove(t *testing.T, ai *AIPlayer) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if ai.HasMoveReady() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for the worker to publish a move")
}

func TestChooseMoveReturnsLegalMove(t *testing.T) {
	quietTestConfig(t, func(c *Config) { c.AiDepth = 2 })
	ai := NewAIPlayer()
	rules := NewRules()
	state := NewGameState(ModeAIBlack)

	move, ok := ai.ChooseMove(state, rules)
	if !ok {
		t.Fatalf("expected a move at the opening")
	}
	if legal, reason := rules.IsLegal(state.Board, move, state.ToMove); !legal {
		t.Fatalf("chose illegal move %s: %s", move, reason)
	}
}

func TestChooseMoveReportsStuckSide(t *testing.T) {
	quietTestConfig(t, func(c *Config) { c.AiDepth = 2 })
	ai := NewAIPlayer()
	state := NewGameState(ModePVP)
	state.Board = stuckWhiteBoard(t)
	state.ToMove = PlayerWhite

	if _, ok := ai.ChooseMove(state, NewRules()); ok {
		t.Fatalf("expected ok=false when the side to move is stuck")
	}
}

func TestWorkerPublishesMove(t *testing.T) {
	quietTestConfig(t, func(c *Config) { c.AiDepth = 2 })
	ai := NewAIPlayer()
	rules := NewRules()
	state := NewGameState(ModeAIBlack)

	ai.StartThinking(state, rules)
	waitForMove(t, ai)

	// The ready flag flips just before the thinking flag clears.
	deadline := time.Now().Add(time.Second)
	for ai.IsThinking() {
		if time.Now().After(deadline) {
			t.Fatalf("expected thinking to end once the move is ready")
		}
		time.Sleep(time.Millisecond)
	}
	move, ok := ai.TakeMove()
	if !ok {
		t.Fatalf("expected a playable move from the worker")
	}
	if legal, reason := rules.IsLegal(state.Board, move, state.ToMove); !legal {
		t.Fatalf("worker published illegal move %s: %s", move, reason)
	}
	if ai.HasMoveReady() {
		t.Fatalf("expected TakeMove to consume the result")
	}
}

func TestStartThinkingIgnoredWhileBusy(t *testing.T) {
	quietTestConfig(t, func(c *Config) {
		c.AiDepth = 2
		c.AiMinThinkMs = 500
	})
	ai := NewAIPlayer()
	rules := NewRules()
	state := NewGameState(ModeAIBlack)

	ai.StartThinking(state, rules)
	if !ai.IsThinking() {
		t.Fatalf("expected the worker to be marked busy")
	}
	first := ai.workerDone
	ai.StartThinking(state, rules)
	if ai.workerDone != first {
		t.Fatalf("expected the second start to be ignored")
	}
	ai.StopThinking()
}

func TestStopThinkingDropsResult(t *testing.T) {
	quietTestConfig(t, func(c *Config) {
		c.AiDepth = 2
		c.AiMinThinkMs = 250
	})
	ai := NewAIPlayer()
	state := NewGameState(ModeAIBlack)

	ai.StartThinking(state, NewRules())
	time.Sleep(10 * time.Millisecond)
	ai.StopThinking()

	if ai.IsThinking() {
		t.Fatalf("expected the worker to have exited")
	}
	if ai.HasMoveReady() {
		t.Fatalf("expected the interrupted result to be dropped")
	}
}

func TestWeightedPlayerPinsWeights(t *testing.T) {
	pinned := DefaultEvalWeights()
	pinned.Early.Corner = 123
	ai := NewWeightedAIPlayer(pinned)

	cfg := DefaultConfig()
	cfg.Weights.Early.Corner = 5
	if got := ai.effectiveWeights(cfg); got != pinned {
		t.Fatalf("expected the pinned weights, got %+v", got)
	}

	plain := NewAIPlayer()
	if got := plain.effectiveWeights(cfg); got != cfg.Weights {
		t.Fatalf("expected the settings weights for an unpinned player")
	}
}

func TestResetTableClearsEntries(t *testing.T) {
	quietTestConfig(t, func(c *Config) { c.AiDepth = 2 })
	ai := NewAIPlayer()
	state := NewGameState(ModeAIBlack)

	if _, ok := ai.ChooseMove(state, NewRules()); !ok {
		t.Fatalf("expected an opening move")
	}
	if ai.TableStats().Size == 0 {
		t.Fatalf("expected the search to fill the table")
	}
	ai.ResetTable()
	if ai.TableStats().Size != 0 {
		t.Fatalf("expected an empty table after reset")
	}
}
