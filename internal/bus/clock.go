package bus

import "sync/atomic"

// Clock hands out monotonically increasing event sequence numbers. Sequence
// numbers order events within one bus; they are not timestamps.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments and returns the sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last number handed out, 0 if none.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
