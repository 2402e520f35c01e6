package main

import "fmt"

// Move addresses a cell by column (x) and row (y), both 0-based.
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (m Move) IsValid() bool {
	return m.X >= 0 && m.Y >= 0 && m.X < BoardSize && m.Y < BoardSize
}

// Notation renders the move in algebraic form, column letter A-H then
// row number 1-8, e.g. {2,3} -> "C4".
func (m Move) Notation() string {
	if !m.IsValid() {
		return "--"
	}
	return fmt.Sprintf("%c%d", 'A'+m.X, m.Y+1)
}

func (m Move) String() string {
	return m.Notation()
}

// passNotation marks a forced pass in the move log.
const passNotation = "--"
