package main

import "strings"

type Cell int8

const (
	CellEmpty Cell = 0
	CellBlack Cell = 1
	CellWhite Cell = -1
)

type Player int8

const (
	PlayerBlack Player = 1
	PlayerWhite Player = -1
)

const (
	BoardSize  = 8
	boardCells = BoardSize * BoardSize
)

// Board is a value type: assignment copies the whole grid, so callers can
// hand boards around without aliasing. Cells are signed so that negating a
// cell swaps its owner.
type Board struct {
	cells [boardCells]Cell
}

func NewBoard() Board {
	b := Board{}
	b.cells[idx(3, 3)] = CellWhite
	b.cells[idx(4, 3)] = CellBlack
	b.cells[idx(3, 4)] = CellBlack
	b.cells[idx(4, 4)] = CellWhite
	return b
}

func idx(x, y int) int {
	return y*BoardSize + x
}

func (b Board) At(x, y int) Cell {
	return b.cells[idx(x, y)]
}

func (b *Board) set(x, y int, value Cell) {
	b.cells[idx(x, y)] = value
}

func InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < BoardSize && y < BoardSize
}

func (b Board) IsEmpty(x, y int) bool {
	return b.At(x, y) == CellEmpty
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) Filled() int {
	return boardCells - b.CountEmpty()
}

func (b Board) Counts() (black, white int) {
	for _, cell := range b.cells {
		switch cell {
		case CellBlack:
			black++
		case CellWhite:
			white++
		}
	}
	return black, white
}

func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			switch b.At(x, y) {
			case CellBlack:
				sb.WriteByte('X')
			case CellWhite:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		if y < BoardSize-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func (p Player) Opponent() Player {
	return -p
}

func (p Player) String() string {
	if p == PlayerBlack {
		return "Black"
	}
	return "White"
}

func CellFromPlayer(player Player) Cell {
	return Cell(player)
}
