package life

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Grid", func() {
	var g Grid

	BeforeEach(func() {
		g = Grid{}
	})

	It("should set and read alive cells", func() {
		g.SetAlive(3, 7, true)

		Expect(g.Alive(3, 7)).To(BeTrue())
		Expect(g[3][7]).To(Equal(AliveBit))
		Expect(g.Population()).To(Equal(1))

		g.SetAlive(3, 7, false)

		Expect(g.Alive(3, 7)).To(BeFalse())
		Expect(g.Population()).To(Equal(0))
	})

	It("should ignore the pending bit when reading liveness", func() {
		g[2][2] = PendingBit

		Expect(g.Alive(2, 2)).To(BeFalse())
		Expect(g.Population()).To(Equal(0))
	})

	It("should report whether it is at rest", func() {
		Expect(g.AtRest()).To(BeTrue())

		g[7][15] = AliveBit | PendingBit

		Expect(g.AtRest()).To(BeFalse())
	})

	It("should panic on a pending bit outside of a step", func() {
		g[0][4] = PendingBit

		Expect(func() { g.MustBeAtRest() }).To(Panic())
	})

	It("should render as text", func() {
		g.SetAlive(0, 0, true)
		g.SetAlive(7, 15, true)

		text := g.String()

		Expect(text).To(HaveLen(Rows * (Cols + 1)))
		Expect(text[:Cols+1]).To(Equal("#...............\n"))
		Expect(text[len(text)-Cols-1:]).To(Equal("...............#\n"))
	})

	It("should encode the committed bits row by row", func() {
		g.SetAlive(0, 1, true)
		g.SetAlive(1, 0, true)

		bits := g.Bits()

		Expect(bits).To(HaveLen(Rows * Cols))
		Expect(bits[:2]).To(Equal("01"))
		Expect(bits[Cols : Cols+2]).To(Equal("10"))
	})

	It("should hand out independent copies of the seed", func() {
		a := Seed()
		a.SetAlive(0, 0, true)

		b := Seed()

		Expect(b.Alive(0, 0)).To(BeFalse())
		Expect(b.Population()).To(Equal(21))
		Expect(b.AtRest()).To(BeTrue())
	})
})
