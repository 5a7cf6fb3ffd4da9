package monitoring

import (
	"reflect"

	"github.com/sarchlab/lifematrix/display"
	"github.com/sarchlab/lifematrix/life"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
	field5 [2][3]uint8
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			field1: 1,
		}

		elem, err := m.walkFields(s, "field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			field2: "abc",
		}

		elem, err := m.walkFields(s, "field2")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			field3: &sampleStruct{
				field1: 1,
			},
		}

		elem, err := m.walkFields(s, "field3.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{
				field4: []sampleStruct{
					{field1: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "field4.0.field4.0.field1")

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk arrays", func() {
		s := &sampleStruct{}
		s.field5[1][2] = 7

		elem, err := m.walkFields(s, "field5.1.2")

		Expect(err).To(BeNil())
		Expect(elem.Uint()).To(Equal(uint64(7)))
	})

	It("should reject missing fields", func() {
		_, err := m.walkFields(&sampleStruct{}, "field9")

		Expect(err).To(MatchError(fieldNotFoundError{"field9"}))
	})

	It("should reject bad indices", func() {
		s := &sampleStruct{}

		_, err := m.walkFields(s, "field5.x")
		Expect(err).To(MatchError(fieldFormatError{"x"}))

		_, err = m.walkFields(s, "field5.2")
		Expect(err).To(MatchError(fieldNotFoundError{"2"}))
	})

	It("should reject walking into scalars", func() {
		_, err := m.walkFields(&sampleStruct{}, "field1.x")

		Expect(err).To(HaveOccurred())
	})

	It("should ignore low port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(32776)
		Expect(m.portNumber).To(Equal(32776))
	})

	It("should remove completed progress bars", func() {
		a := m.CreateProgressBar("a", 10)
		b := m.CreateProgressBar("b", 0)

		m.CompleteProgressBar(a)

		Expect(m.progressBars).To(ConsistOf(b))
	})
})

var _ = Describe("frameHex", func() {
	It("should flatten brightness row by row", func() {
		fb := display.Framebuffer{}
		fb[0][0] = 15
		fb[0][1] = 10
		fb[7][15] = 1

		hex := frameHex(&fb)

		Expect(hex).To(HaveLen(life.Rows * life.Cols))
		Expect(hex[:3]).To(Equal("fa0"))
		Expect(hex[life.Rows*life.Cols-1:]).To(Equal("1"))
	})
})

var _ = Describe("ProgressBar", func() {
	It("should track finished work", func() {
		b := &ProgressBar{Total: 3}

		b.SetFinished(1)
		Expect(b.Done()).To(BeFalse())

		b.SetFinished(3)
		Expect(b.Done()).To(BeTrue())
	})

	It("should never be done without a total", func() {
		b := &ProgressBar{}

		b.SetFinished(1000)

		Expect(b.Done()).To(BeFalse())
	})
})
