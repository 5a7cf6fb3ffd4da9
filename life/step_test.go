package life

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func gridOf(cells ...[2]int) Grid {
	g := Grid{}
	for _, c := range cells {
		g.SetAlive(c[0], c[1], true)
	}

	return g
}

func shifted(g Grid, dRow, dCol int) Grid {
	out := Grid{}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			out[(row+dRow)%Rows][(col+dCol)%Cols] = g[row][col]
		}
	}

	return out
}

var _ = Describe("Step", func() {
	It("should apply birth and survival thresholds", func() {
		Expect(NextAlive(false, 3)).To(BeTrue())
		Expect(NextAlive(false, 2)).To(BeFalse())
		Expect(NextAlive(true, 2)).To(BeTrue())
		Expect(NextAlive(true, 3)).To(BeTrue())

		for n := uint8(0); n <= 8; n++ {
			if n == 2 || n == 3 {
				continue
			}

			Expect(NextAlive(true, n)).To(BeFalse())
			Expect(NextAlive(false, n)).To(BeFalse())
		}
	})

	It("should advance the seed by one hand-checked generation", func() {
		g := Seed()

		Step(&g)

		Expect(g).To(Equal(Grid{
			{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0},
			{0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0},
			{0, 0, 1, 1, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		}))
		Expect(g.Population()).To(Equal(18))
	})

	It("should reach the second generation of the seed", func() {
		g := Seed()

		g.Step()
		g.Step()

		Expect(g.Population()).To(Equal(26))
		Expect(g[3]).To(Equal(
			[Cols]uint8{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0}))
	})

	It("should keep a block still", func() {
		g := gridOf([2]int{3, 3}, [2]int{3, 4}, [2]int{4, 3}, [2]int{4, 4})
		before := g

		Step(&g)

		Expect(g).To(Equal(before))
	})

	It("should oscillate a blinker with period 2", func() {
		horizontal := gridOf([2]int{4, 7}, [2]int{4, 8}, [2]int{4, 9})
		vertical := gridOf([2]int{3, 8}, [2]int{4, 8}, [2]int{5, 8})

		g := horizontal
		Step(&g)
		Expect(g).To(Equal(vertical))

		Step(&g)
		Expect(g).To(Equal(horizontal))
	})

	It("should kill a 3x3 block down to its ring-shaped successor", func() {
		g := gridOf(
			[2]int{3, 6}, [2]int{3, 7}, [2]int{3, 8},
			[2]int{4, 6}, [2]int{4, 7}, [2]int{4, 8},
			[2]int{5, 6}, [2]int{5, 7}, [2]int{5, 8},
		)

		Step(&g)

		Expect(g).To(Equal(gridOf(
			[2]int{2, 7},
			[2]int{3, 6}, [2]int{3, 8},
			[2]int{4, 5}, [2]int{4, 9},
			[2]int{5, 6}, [2]int{5, 8},
			[2]int{6, 7},
		)))
	})

	It("should move a glider one cell diagonally every 4 generations", func() {
		glider := gridOf(
			[2]int{0, 1},
			[2]int{1, 2},
			[2]int{2, 0}, [2]int{2, 1}, [2]int{2, 2},
		)

		g := glider
		for i := 0; i < 4; i++ {
			Step(&g)
		}

		Expect(g).To(Equal(shifted(glider, 1, 1)))
	})

	It("should carry a glider across the wrapped corner", func() {
		glider := shifted(gridOf(
			[2]int{0, 1},
			[2]int{1, 2},
			[2]int{2, 0}, [2]int{2, 1}, [2]int{2, 2},
		), Rows-2, Cols-2)

		g := glider
		for i := 0; i < 4*Rows; i++ {
			Step(&g)
		}

		Expect(g).To(Equal(shifted(glider, Rows, Rows)))
	})

	It("should leave every cell at rest after each step", func() {
		g := Seed()

		for i := 0; i < 64; i++ {
			Step(&g)

			for row := 0; row < Rows; row++ {
				for col := 0; col < Cols; col++ {
					Expect(g[row][col]).To(BeNumerically("<=", 1))
				}
			}
		}
	})

	It("should refuse to step a grid with staged cells", func() {
		g := Seed()
		g[5][5] |= PendingBit

		Expect(func() { Step(&g) }).To(Panic())
	})

	It("should not allocate", func() {
		g := Seed()

		allocs := testing.AllocsPerRun(100, func() {
			Step(&g)
		})

		Expect(allocs).To(BeZero())
	})
})
