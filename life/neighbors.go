package life

// CountClamped counts the live neighbors of a cell without wrapping around
// the edges. Corner cells see at most 3 neighbors and edge cells at most 5.
func CountClamped(g *Grid, row, col int) uint8 {
	var total uint8

	for r := max(row-1, 0); r <= min(row+1, Rows-1); r++ {
		for c := max(col-1, 0); c <= min(col+1, Cols-1); c++ {
			if r == row && c == col {
				continue
			}

			total += g[r][c] & AliveBit
		}
	}

	return total
}

// CountToroidal counts the live neighbors of a cell on a torus: the top row
// is adjacent to the bottom row and the left column to the right column.
//
// The offsets are shifted by one full dimension so the sums never go
// negative before the modulus.
func CountToroidal(g *Grid, row, col int) uint8 {
	var total uint8

	for rOff := Rows - 1; rOff <= Rows+1; rOff++ {
		for cOff := Cols - 1; cOff <= Cols+1; cOff++ {
			if rOff == Rows && cOff == Cols {
				continue
			}

			r := (row + rOff) % Rows
			c := (col + cOff) % Cols
			total += g[r][c] & AliveBit
		}
	}

	return total
}
