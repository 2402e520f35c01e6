package main

// The 8 rays searched from any cell.
var directions = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

type Rules struct{}

func NewRules() Rules {
	return Rules{}
}

// Flips returns every opponent stone captured by playing move, scanning all
// 8 rays. A run counts only when it is terminated by one of player's stones
// before the board edge. Empty result means the move is illegal.
func (r Rules) Flips(board Board, move Move, player Player) []Move {
	if !move.IsValid() || !board.IsEmpty(move.X, move.Y) {
		return nil
	}
	own := CellFromPlayer(player)
	opp := CellFromPlayer(player.Opponent())
	var flips []Move
	for _, dir := range directions {
		x, y := move.X+dir[0], move.Y+dir[1]
		runStart := len(flips)
		for InBounds(x, y) && board.At(x, y) == opp {
			flips = append(flips, Move{X: x, Y: y})
			x += dir[0]
			y += dir[1]
		}
		if len(flips) > runStart && (!InBounds(x, y) || board.At(x, y) != own) {
			flips = flips[:runStart]
		}
	}
	return flips
}

func (r Rules) IsLegal(board Board, move Move, player Player) (bool, string) {
	if !move.IsValid() {
		return false, "out of bounds"
	}
	if !board.IsEmpty(move.X, move.Y) {
		return false, "occupied"
	}
	if !r.capturesAny(board, move, player) {
		return false, "no stones flipped"
	}
	return true, ""
}

func (r Rules) capturesAny(board Board, move Move, player Player) bool {
	own := CellFromPlayer(player)
	opp := CellFromPlayer(player.Opponent())
	for _, dir := range directions {
		x, y := move.X+dir[0], move.Y+dir[1]
		seenOpp := false
		for InBounds(x, y) && board.At(x, y) == opp {
			seenOpp = true
			x += dir[0]
			y += dir[1]
		}
		if seenOpp && InBounds(x, y) && board.At(x, y) == own {
			return true
		}
	}
	return false
}

// LegalMoves enumerates in row-major order (y outer, x inner); the search
// and the tests rely on this order being stable.
func (r Rules) LegalMoves(board Board, player Player) []Move {
	var moves []Move
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			move := Move{X: x, Y: y}
			if !board.IsEmpty(x, y) {
				continue
			}
			if r.capturesAny(board, move, player) {
				moves = append(moves, move)
			}
		}
	}
	return moves
}

func (r Rules) HasLegalMove(board Board, player Player) bool {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if !board.IsEmpty(x, y) {
				continue
			}
			if r.capturesAny(board, Move{X: x, Y: y}, player) {
				return true
			}
		}
	}
	return false
}

func (r Rules) MustPass(board Board, player Player) bool {
	return !r.HasLegalMove(board, player)
}

// Apply returns the board after player plays move. The input board is never
// mutated. An illegal move yields the input unchanged: either a full flip
// happens or nothing does.
func (r Rules) Apply(board Board, move Move, player Player) Board {
	flips := r.Flips(board, move, player)
	if len(flips) == 0 {
		return board
	}
	next := board
	own := CellFromPlayer(player)
	next.set(move.X, move.Y, own)
	for _, f := range flips {
		next.set(f.X, f.Y, own)
	}
	return next
}

func (r Rules) IsTerminal(board Board) bool {
	if board.CountEmpty() == 0 {
		return true
	}
	return !r.HasLegalMove(board, PlayerBlack) && !r.HasLegalMove(board, PlayerWhite)
}

func (r Rules) Score(board Board) (black, white int) {
	return board.Counts()
}

// Winner reports the leader by stone count on a finished board;
// ok is false on a draw.
func (r Rules) Winner(board Board) (winner Player, ok bool) {
	black, white := board.Counts()
	switch {
	case black > white:
		return PlayerBlack, true
	case white > black:
		return PlayerWhite, true
	default:
		return 0, false
	}
}
