// Package life implements the fixed 8x16 toroidal Game of Life used by the
// LED matrix. Every operation works in place on a Grid value and never
// allocates.
package life

import "log"

// Grid dimensions.
const (
	Rows = 8
	Cols = 16
)

// Cell state bits.
const (
	// AliveBit is set when the cell is alive in the committed generation.
	AliveBit uint8 = 0b01

	// PendingBit stages the next generation during a step. It is always
	// clear between steps.
	PendingBit uint8 = 0b10
)

// Grid holds one state byte per cell.
type Grid [Rows][Cols]uint8

// Alive tells if the cell is alive in the committed generation.
func (g *Grid) Alive(row, col int) bool {
	return g[row][col]&AliveBit == AliveBit
}

// SetAlive commits the alive bit of a cell. It must not be called while a
// step is in progress.
func (g *Grid) SetAlive(row, col int, alive bool) {
	if alive {
		g[row][col] = AliveBit
		return
	}

	g[row][col] = 0
}

// Population counts the live cells.
func (g *Grid) Population() int {
	n := 0

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			n += int(g[row][col] & AliveBit)
		}
	}

	return n
}

// AtRest reports whether every cell holds only a committed alive bit.
func (g *Grid) AtRest() bool {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if g[row][col]&^AliveBit != 0 {
				return false
			}
		}
	}

	return true
}

// MustBeAtRest panics if a cell carries anything other than its alive bit.
func (g *Grid) MustBeAtRest() {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if g[row][col]&^AliveBit != 0 {
				log.Panicf("life: cell (%d, %d) is not at rest: %#02b",
					row, col, g[row][col])
			}
		}
	}
}

// String renders the committed generation, one line per row, with '#' for
// live cells and '.' for dead ones.
func (g *Grid) String() string {
	buf := make([]byte, 0, Rows*(Cols+1))

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if g.Alive(row, col) {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}

		buf = append(buf, '\n')
	}

	return string(buf)
}

// Bits returns the committed generation as a row-major string of '0' and
// '1' characters.
func (g *Grid) Bits() string {
	buf := make([]byte, 0, Rows*Cols)

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			buf = append(buf, '0'+g[row][col]&AliveBit)
		}
	}

	return string(buf)
}
