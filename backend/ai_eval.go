package main

import "golang.org/x/exp/constraints"

const (
	evalInf  = 1_000_000_000.0
	winScore = 1_000_000.0
)

// positionWeights scores each square by long-term strategic value. Corners
// are stable forever, X-squares hand the adjacent corner to the opponent,
// edges are hard to flip. Indexed with idx(x, y); the table is symmetric
// under every board symmetry so orientation does not matter.
var positionWeights = [boardCells]float64{
	120, -20, 20, 5, 5, 20, -20, 120,
	-20, -40, -5, -5, -5, -5, -40, -20,
	20, -5, 15, 3, 3, 15, -5, 20,
	5, -5, 3, 3, 3, 3, -5, 5,
	5, -5, 3, 3, 3, 3, -5, 5,
	20, -5, 15, 3, 3, 15, -5, 20,
	-20, -40, -5, -5, -5, -5, -40, -20,
	120, -20, 20, 5, 5, 20, -20, 120,
}

var corners = [4]Move{{X: 0, Y: 0}, {X: BoardSize - 1, Y: 0}, {X: 0, Y: BoardSize - 1}, {X: BoardSize - 1, Y: BoardSize - 1}}

// dangerCells are the squares touching a corner. Holding one while the
// corner is still empty usually lets the opponent capture that corner.
var dangerCells = [12]struct {
	cell   Move
	corner Move
}{
	{Move{X: 1, Y: 0}, Move{X: 0, Y: 0}},
	{Move{X: 0, Y: 1}, Move{X: 0, Y: 0}},
	{Move{X: 1, Y: 1}, Move{X: 0, Y: 0}},
	{Move{X: 6, Y: 0}, Move{X: 7, Y: 0}},
	{Move{X: 7, Y: 1}, Move{X: 7, Y: 0}},
	{Move{X: 6, Y: 1}, Move{X: 7, Y: 0}},
	{Move{X: 0, Y: 6}, Move{X: 0, Y: 7}},
	{Move{X: 1, Y: 7}, Move{X: 0, Y: 7}},
	{Move{X: 1, Y: 6}, Move{X: 0, Y: 7}},
	{Move{X: 7, Y: 6}, Move{X: 7, Y: 7}},
	{Move{X: 6, Y: 7}, Move{X: 7, Y: 7}},
	{Move{X: 6, Y: 6}, Move{X: 7, Y: 7}},
}

func isCorner(m Move) bool {
	return (m.X == 0 || m.X == BoardSize-1) && (m.Y == 0 || m.Y == BoardSize-1)
}

func isDangerCell(m Move) bool {
	for i := range dangerCells {
		if dangerCells[i].cell == m {
			return true
		}
	}
	return false
}

// gamePhase reports progress through the game in [0, 1], 0 at the starting
// position and 1 on a full board.
func gamePhase(board Board) float64 {
	return float64(board.Filled()-4) / float64(boardCells-4)
}

// phaseBlend returns the early/mid/late mixing coefficients for a given
// progress. They are piecewise linear and always sum to 1: early fades out
// by midgame, late fades in from midgame, mid peaks at progress 0.5.
func phaseBlend(progress float64) (early, mid, late float64) {
	progress = clamp(progress, 0, 1)
	if progress < 0.5 {
		return 1 - 2*progress, 2 * progress, 0
	}
	return 0, 2 - 2*progress, 2*progress - 1
}

// blendPhaseWeights interpolates the three phase coefficient sets into the
// effective weights for the current position.
func blendPhaseWeights(weights EvalWeights, progress float64) PhaseWeights {
	e, m, l := phaseBlend(progress)
	return PhaseWeights{
		Positional: e*weights.Early.Positional + m*weights.Mid.Positional + l*weights.Late.Positional,
		Corner:     e*weights.Early.Corner + m*weights.Mid.Corner + l*weights.Late.Corner,
		Mobility:   e*weights.Early.Mobility + m*weights.Mid.Mobility + l*weights.Late.Mobility,
		Frontier:   e*weights.Early.Frontier + m*weights.Mid.Frontier + l*weights.Late.Frontier,
		Danger:     e*weights.Early.Danger + m*weights.Mid.Danger + l*weights.Late.Danger,
		Material:   e*weights.Early.Material + m*weights.Mid.Material + l*weights.Late.Material,
	}
}

// Evaluate scores a position from player's point of view, higher meaning
// better for player. Every signal is an own-minus-opponent difference, so
// Evaluate(b, p) == -Evaluate(b, p.Opponent()) holds exactly.
func Evaluate(board Board, player Player, rules Rules, weights EvalWeights) float64 {
	if rules.IsTerminal(board) {
		return terminalScore(board, player)
	}

	w := blendPhaseWeights(weights, gamePhase(board))

	score := w.Positional * positionalDiff(board, player)
	score += w.Corner * cornerDiff(board, player)
	score += w.Mobility * mobilityDiff(board, player, rules)
	score += w.Frontier * frontierDiff(board, player)
	score += w.Danger * dangerDiff(board, player)
	score += w.Material * materialDiff(board, player)
	return score
}

// terminalScore rewards a finished game with a margin far above any
// heuristic value, plus the stone difference so larger wins rank higher.
func terminalScore(board Board, player Player) float64 {
	diff := materialDiff(board, player)
	switch {
	case diff > 0:
		return winScore + diff
	case diff < 0:
		return -winScore + diff
	default:
		return 0
	}
}

func positionalDiff(board Board, player Player) float64 {
	own := CellFromPlayer(player)
	total := 0.0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			switch board.At(x, y) {
			case own:
				total += positionWeights[idx(x, y)]
			case CellEmpty:
			default:
				total -= positionWeights[idx(x, y)]
			}
		}
	}
	return total
}

// cornerDiff counts owned corners, scaled so one captured corner outweighs
// a handful of positional points.
func cornerDiff(board Board, player Player) float64 {
	own := CellFromPlayer(player)
	diff := 0
	for _, c := range corners {
		switch board.At(c.X, c.Y) {
		case own:
			diff++
		case CellEmpty:
		default:
			diff--
		}
	}
	return float64(diff) * 25
}

func mobilityDiff(board Board, player Player, rules Rules) float64 {
	ownMoves := len(rules.LegalMoves(board, player))
	oppMoves := len(rules.LegalMoves(board, player.Opponent()))
	return float64(ownMoves - oppMoves)
}

// frontierDiff penalizes frontier stones, stones bordering at least one
// empty square, because each one is a flipping target. Having fewer
// frontier stones than the opponent scores positive.
func frontierDiff(board Board, player Player) float64 {
	own := CellFromPlayer(player)
	diff := 0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			cell := board.At(x, y)
			if cell == CellEmpty || !hasEmptyNeighbor(board, x, y) {
				continue
			}
			if cell == own {
				diff--
			} else {
				diff++
			}
		}
	}
	return float64(diff)
}

func hasEmptyNeighbor(board Board, x, y int) bool {
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if InBounds(nx, ny) && board.At(nx, ny) == CellEmpty {
			return true
		}
	}
	return false
}

// dangerDiff penalizes stones parked next to an empty corner. Once the
// corner is taken the adjacent squares stop being a liability, so occupied
// corners mute their three neighbors.
func dangerDiff(board Board, player Player) float64 {
	own := CellFromPlayer(player)
	diff := 0
	for i := range dangerCells {
		d := dangerCells[i]
		if board.At(d.corner.X, d.corner.Y) != CellEmpty {
			continue
		}
		switch board.At(d.cell.X, d.cell.Y) {
		case own:
			diff--
		case CellEmpty:
		default:
			diff++
		}
	}
	return float64(diff)
}

func materialDiff(board Board, player Player) float64 {
	black, white := board.Counts()
	diff := black - white
	if player == PlayerWhite {
		diff = -diff
	}
	return float64(diff)
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}
