package hw

// ShiftRegister models a chain of 8-bit serial-in, parallel-out registers.
// Bytes written over the bus shift in; a rising edge on the latch pin copies
// the shift stage to the outputs.
type ShiftRegister struct {
	shift   []byte
	outputs []byte
	latch   *MemPin
	latches uint64
}

// NewShiftRegister creates a chain of n 8-bit registers.
func NewShiftRegister(n int) *ShiftRegister {
	r := &ShiftRegister{
		shift:   make([]byte, n),
		outputs: make([]byte, n),
	}

	r.latch = NewMemPin()
	r.latch.onRise = r.doLatch

	return r
}

// Write shifts bytes in. The first byte written ends up farthest down the
// chain once the whole chain has been filled.
func (r *ShiftRegister) Write(data []byte) error {
	for _, b := range data {
		copy(r.shift, r.shift[1:])
		r.shift[len(r.shift)-1] = b
	}

	return nil
}

// LatchPin returns the pin that latches the shift stage on a rising edge.
func (r *ShiftRegister) LatchPin() OutputPin {
	return r.latch
}

// Outputs returns the latched outputs. The slice must not be modified.
func (r *ShiftRegister) Outputs() []byte {
	return r.outputs
}

// Latches returns how many times the outputs were latched.
func (r *ShiftRegister) Latches() uint64 {
	return r.latches
}

func (r *ShiftRegister) doLatch() {
	copy(r.outputs, r.shift)
	r.latches++
}
