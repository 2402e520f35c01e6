package main

// HumanPlayer is a seat driven from outside: moves arrive through the
// HTTP handlers, so the controller never asks this seat for one.
type HumanPlayer struct{}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) ChooseMove(GameState, Rules) (Move, bool) {
	return noMove, false
}
