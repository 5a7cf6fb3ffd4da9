package scheduler

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/hw"
)

var _ = Describe("LogHook", func() {
	var (
		buf *bytes.Buffer
		h   *LogHook
		s   *Scheduler
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		h = NewLogHook(log.New(buf, "", 0))
		s = MakeBuilder().
			WithFramebuffer(&display.Framebuffer{}).
			WithDisplay(&countingDisplay{}).
			WithHeartbeat(hw.NewMemPin()).
			WithInitialTimeout(0).
			Build("Matrix")
		s.AcceptHook(h)
	})

	It("should log each generation once", func() {
		s.RunIterations(DefaultFrameDuration + 1)

		Expect(buf.String()).To(Equal(
			"generation 1, iteration 0, 0.000000s, population 18\n" +
				"generation 2, iteration 8, 0.008000s, population 26\n"))
	})

	It("should print the frame when asked", func() {
		h.ShowFrame = true

		s.Tick()

		Expect(buf.String()).To(ContainSubstring("....###.#.......\n"))
	})
})
