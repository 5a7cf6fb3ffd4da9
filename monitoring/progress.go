package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many generations a run has stepped.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`

	// Total is zero when the run has no generation limit.
	Total    uint64 `json:"total"`
	Finished uint64 `json:"finished"`
}

// SetFinished overwrites the number of finished elements.
func (b *ProgressBar) SetFinished(finished uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished = finished
}

// Done tells if a bounded bar has reached its total.
func (b *ProgressBar) Done() bool {
	b.Lock()
	defer b.Unlock()

	return b.Total > 0 && b.Finished >= b.Total
}
