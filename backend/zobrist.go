package main

// Zobrist keys for every (cell, color) pair plus a side-to-move key.
// Seeded deterministically so hashes are reproducible across runs; the
// transposition table never outlives the process anyway.
type ZobristTable struct {
	cells [boardCells * 2]uint64
	side  uint64
}

var zobrist = newZobristTable()

func newZobristTable() *ZobristTable {
	rng := splitmix64{state: 0x9e3779b97f4a7c15 ^ uint64(BoardSize)}
	table := &ZobristTable{}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	table.side = rng.next()
	return table
}

func (z *ZobristTable) stone(x, y int, player Player) uint64 {
	i := idx(x, y) * 2
	if player == PlayerWhite {
		i++
	}
	return z.cells[i]
}

// ComputeHash hashes the full position including the side to move, so a
// board reached with either player on turn keys two distinct TT entries.
func ComputeHash(board Board, toMove Player) uint64 {
	var hash uint64
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			switch board.At(x, y) {
			case CellBlack:
				hash ^= zobrist.stone(x, y, PlayerBlack)
			case CellWhite:
				hash ^= zobrist.stone(x, y, PlayerWhite)
			}
		}
	}
	if toMove == PlayerWhite {
		hash ^= zobrist.side
	}
	return hash
}

// HashAfterMove updates hash incrementally for player placing move and
// flipping flips. Each flipped stone swaps color, the placed stone appears,
// and the turn passes to the opponent.
func HashAfterMove(hash uint64, move Move, flips []Move, player Player) uint64 {
	opp := player.Opponent()
	hash ^= zobrist.stone(move.X, move.Y, player)
	for _, f := range flips {
		hash ^= zobrist.stone(f.X, f.Y, opp)
		hash ^= zobrist.stone(f.X, f.Y, player)
	}
	return hash ^ zobrist.side
}

// HashAfterPass flips only the side-to-move component.
func HashAfterPass(hash uint64) uint64 {
	return hash ^ zobrist.side
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
