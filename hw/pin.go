package hw

// MemPin is an OutputPin that only remembers its level. It also counts
// toggles, which makes it usable as a heartbeat probe.
type MemPin struct {
	high    bool
	toggles uint64

	onRise func()
}

// NewMemPin creates a pin that starts low.
func NewMemPin() *MemPin {
	return &MemPin{}
}

// SetHigh drives the pin high.
func (p *MemPin) SetHigh() {
	p.set(true)
}

// SetLow drives the pin low.
func (p *MemPin) SetLow() {
	p.set(false)
}

// Toggle flips the pin.
func (p *MemPin) Toggle() {
	p.toggles++
	p.set(!p.high)
}

// IsHigh tells the current level.
func (p *MemPin) IsHigh() bool {
	return p.high
}

// Toggles returns how many times Toggle was called.
func (p *MemPin) Toggles() uint64 {
	return p.toggles
}

func (p *MemPin) set(high bool) {
	rising := high && !p.high
	p.high = high

	if rising && p.onRise != nil {
		p.onRise()
	}
}
