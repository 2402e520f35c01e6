package main

// IPlayer is a seat at the board. ChooseMove reports ok=false when the
// seat has no move to offer: for a human that is always (their moves come
// in over the API), for an AI it means the side must pass.
type IPlayer interface {
	IsHuman() bool
	ChooseMove(state GameState, rules Rules) (Move, bool)
}
