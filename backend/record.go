package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrLoadFailed = errors.New("load failed")

// GameRecord is the on-disk snapshot of a game. Cells are flat row-major
// ints (-1 white, 0 empty, 1 black) so the file stays readable and other
// tools can produce one. Undo history is deliberately not saved.
type GameRecord struct {
	Board    []int    `json:"board"`
	Player   int      `json:"player"`
	Mode     string   `json:"mode"`
	Notation []string `json:"notation"`
	LastMove *Move    `json:"last_move,omitempty"`
}

func ToRecord(state GameState) GameRecord {
	board := make([]int, boardCells)
	for i, c := range state.Board.cells {
		board[i] = int(c)
	}
	record := GameRecord{
		Board:    board,
		Player:   int(state.ToMove),
		Mode:     string(state.Mode),
		Notation: append([]string(nil), state.Notation...),
	}
	if state.HasLastMove {
		m := state.LastMove
		record.LastMove = &m
	}
	return record
}

// RestoreRecord validates a loaded record and rebuilds the game state.
// Anything structurally off, wrong cell count, unknown stone values,
// unknown side or mode, fails with ErrLoadFailed so callers can fall
// back to a fresh game instead of resuming garbage.
func RestoreRecord(record GameRecord) (GameState, error) {
	mode := GameMode(record.Mode)
	if !mode.Valid() {
		return GameState{}, fmt.Errorf("%w: unknown mode %q", ErrLoadFailed, record.Mode)
	}
	if len(record.Board) != boardCells {
		return GameState{}, fmt.Errorf("%w: board has %d cells, want %d", ErrLoadFailed, len(record.Board), boardCells)
	}

	state := NewGameState(mode)
	for i, v := range record.Board {
		switch v {
		case -1, 0, 1:
			state.Board.cells[i] = Cell(v)
		default:
			return GameState{}, fmt.Errorf("%w: bad cell value %d at index %d", ErrLoadFailed, v, i)
		}
	}
	switch record.Player {
	case 1:
		state.ToMove = PlayerBlack
	case -1:
		state.ToMove = PlayerWhite
	default:
		return GameState{}, fmt.Errorf("%w: bad player %d", ErrLoadFailed, record.Player)
	}
	state.Notation = append([]string(nil), record.Notation...)
	if record.LastMove != nil && record.LastMove.IsValid() {
		state.HasLastMove = true
		state.LastMove = *record.LastMove
	}
	return state, nil
}

// SaveRecordFile writes through a temp file and renames, so a crash mid
// write never leaves a truncated save behind.
func SaveRecordFile(path string, record GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func LoadRecordFile(path string) (GameRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameRecord{}, err
	}
	var record GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return GameRecord{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return record, nil
}
