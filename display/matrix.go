package display

import (
	"log"

	"github.com/sarchlab/lifematrix/hw"
	"github.com/sarchlab/lifematrix/life"
	"github.com/sarchlab/lifematrix/sim"
)

// RowAddressBits is the number of row-select pins.
const RowAddressBits = 3

// startupFreq arms the timer at construction so the first scan has a
// running timer to wait on.
const startupFreq = 1 * sim.MHz

// Matrix drives an 8x16 LED matrix one row at a time. The column data of a
// row goes out through a 16-bit shift register, and three address pins
// select which row is lit. Brightness uses bit-angle modulation: every row
// is shown once per bit plane, and lower planes are shown for shorter
// periods.
type Matrix struct {
	fb Framebuffer

	rowPins       [RowAddressBits]hw.OutputPin
	latch         hw.OutputPin
	outputDisable hw.OutputPin
	timer         hw.CountDown
	bus           hw.Bus

	row   int
	plane int
	buf   [life.Cols / 8]byte
}

// MatrixBuilder builds Matrix drivers.
type MatrixBuilder struct {
	rowPins       [RowAddressBits]hw.OutputPin
	latch         hw.OutputPin
	outputDisable hw.OutputPin
	timer         hw.CountDown
	bus           hw.Bus
}

// MakeMatrixBuilder creates a MatrixBuilder.
func MakeMatrixBuilder() MatrixBuilder {
	return MatrixBuilder{}
}

// WithRowPins sets the row-address pins, least significant bit first.
func (b MatrixBuilder) WithRowPins(pins [RowAddressBits]hw.OutputPin) MatrixBuilder {
	b.rowPins = pins
	return b
}

// WithLatch sets the pin that latches the shift register.
func (b MatrixBuilder) WithLatch(p hw.OutputPin) MatrixBuilder {
	b.latch = p
	return b
}

// WithOutputDisable sets the pin that blanks the matrix while it is high.
func (b MatrixBuilder) WithOutputDisable(p hw.OutputPin) MatrixBuilder {
	b.outputDisable = p
	return b
}

// WithTimer sets the timer that paces the scan.
func (b MatrixBuilder) WithTimer(t hw.CountDown) MatrixBuilder {
	b.timer = t
	return b
}

// WithBus sets the bus connected to the column shift register.
func (b MatrixBuilder) WithBus(bus hw.Bus) MatrixBuilder {
	b.bus = bus
	return b
}

// Build creates the Matrix and starts its timer.
func (b MatrixBuilder) Build() *Matrix {
	for i, p := range b.rowPins {
		if p == nil {
			log.Panicf("display: row pin %d is not set", i)
		}
	}

	if b.latch == nil || b.outputDisable == nil {
		log.Panic("display: latch and output-disable pins are required")
	}

	if b.timer == nil || b.bus == nil {
		log.Panic("display: timer and bus are required")
	}

	m := &Matrix{
		rowPins:       b.rowPins,
		latch:         b.latch,
		outputDisable: b.outputDisable,
		timer:         b.timer,
		bus:           b.bus,
	}

	m.timer.Start(startupFreq)

	return m
}

// Framebuffer returns the buffer the matrix is refreshed from.
func (m *Matrix) Framebuffer() *Framebuffer {
	return &m.fb
}

// Position returns the row and bit plane the next scan will show.
func (m *Matrix) Position() (row, plane int) {
	return m.row, m.plane
}

// Scan performs one unit of refresh work if the previous one has been shown
// long enough. It returns hw.ErrWouldBlock without touching the hardware
// otherwise. The period of bit plane p is that of freq << (BitDepth-1-p).
func (m *Matrix) Scan(freq sim.Freq) error {
	if err := m.timer.Wait(); err != nil {
		return err
	}

	m.outputDisable.SetHigh()

	m.encodeRow()
	if err := m.bus.Write(m.buf[:]); err != nil {
		return err
	}

	m.latch.SetHigh()
	m.latch.SetLow()

	for i, p := range m.rowPins {
		if m.row&(1<<i) != 0 {
			p.SetHigh()
		} else {
			p.SetLow()
		}
	}

	m.outputDisable.SetLow()
	m.timer.Start(freq.Shl(uint(BitDepth - 1 - m.plane)))

	m.advance()

	return nil
}

// encodeRow packs the current plane of the current row, column 0 in the
// most significant bit of the first byte.
func (m *Matrix) encodeRow() {
	for i := range m.buf {
		m.buf[i] = 0
	}

	for col := 0; col < life.Cols; col++ {
		if (m.fb[m.row][col]>>m.plane)&1 == 1 {
			m.buf[col/8] |= 0x80 >> (col % 8)
		}
	}
}

func (m *Matrix) advance() {
	m.plane++
	if m.plane < BitDepth {
		return
	}

	m.plane = 0
	m.row = (m.row + 1) % life.Rows
}
