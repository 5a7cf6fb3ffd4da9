package life

// NextAlive applies the B3/S23 rule to a single cell.
func NextAlive(alive bool, neighbors uint8) bool {
	return neighbors == 3 || (alive && neighbors == 2)
}

// Step advances the grid by one generation in place.
//
// The first pass stages every cell's next state in PendingBit while reading
// only AliveBit, so no cell sees a neighbor's future. The second pass
// shifts the staged bit down, which commits it and clears PendingBit.
func Step(g *Grid) {
	g.MustBeAtRest()

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			n := CountToroidal(g, row, col)
			if NextAlive(g[row][col]&AliveBit == AliveBit, n) {
				g[row][col] |= PendingBit
			}
		}
	}

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			g[row][col] >>= 1
		}
	}
}

// Step advances the grid by one generation in place.
func (g *Grid) Step() {
	Step(g)
}
