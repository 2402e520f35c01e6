package main

// GameMode selects who plays each color. The AI side of ai_white/ai_black
// names the color the computer plays.
type GameMode string

const (
	ModePVP     GameMode = "pvp"
	ModeAIWhite GameMode = "ai_white"
	ModeAIBlack GameMode = "ai_black"
	ModeAIVsAI  GameMode = "ai_vs_ai"
)

func (m GameMode) Valid() bool {
	switch m {
	case ModePVP, ModeAIWhite, ModeAIBlack, ModeAIVsAI:
		return true
	}
	return false
}

// AIPlays reports whether the computer controls the given color in this
// mode.
func (m GameMode) AIPlays(player Player) bool {
	switch m {
	case ModeAIWhite:
		return player == PlayerWhite
	case ModeAIBlack:
		return player == PlayerBlack
	case ModeAIVsAI:
		return true
	}
	return false
}

// GameState is one snapshot of a game. It is a value type: assignment
// copies the board, but Notation and LastFlips share backing arrays, so
// anything that keeps a snapshot (undo stack, AI worker) must Clone.
type GameState struct {
	Board       Board
	ToMove      Player
	Mode        GameMode
	Notation    []string
	HasLastMove bool
	LastMove    Move
	LastFlips   []Move
	PassStreak  int
}

func NewGameState(mode GameMode) GameState {
	state := GameState{}
	state.Reset(mode)
	return state
}

func (s *GameState) Reset(mode GameMode) {
	s.Board = NewBoard()
	s.ToMove = PlayerBlack
	s.Mode = mode
	s.Notation = nil
	s.HasLastMove = false
	s.LastMove = noMove
	s.LastFlips = nil
	s.PassStreak = 0
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Notation = append([]string(nil), s.Notation...)
	clone.LastFlips = append([]Move(nil), s.LastFlips...)
	return clone
}
