package teammsg

import "time"

// ntpSample is one completed round trip with a remote player (§4.3 "Offsets
// are stored per remote player; ... Recipients use the offset with the
// smallest round-trip in a rolling window").
type ntpSample struct {
	offset   time.Duration
	roundTrip time.Duration
}

// ClockSync tracks one remote player's clock offset estimate over a rolling
// window of completed NTP round trips.
type ClockSync struct {
	window   []ntpSample
	maxWindow int
}

// NewClockSync constructs a ClockSync keeping at most windowSize samples.
func NewClockSync(windowSize int) *ClockSync {
	if windowSize <= 0 {
		windowSize = 5
	}
	return &ClockSync{maxWindow: windowSize}
}

// Record ingests a completed round trip's four timestamps (all in the
// local monotonic-ish millisecond clock each side stamps its own messages
// with) and computes the skew estimate (§4.3):
//
//	offset ≈ ((receipt − origination) + (responseOrigination − responseReceipt)) / 2
func (c *ClockSync) Record(origination, receipt, responseOrigination, localReceiptOfResponse uint32) {
	offset := (int64(receipt) - int64(origination) + int64(responseOrigination) - int64(localReceiptOfResponse)) / 2
	roundTrip := int64(localReceiptOfResponse) - int64(origination)
	if roundTrip < 0 {
		return
	}

	c.window = append(c.window, ntpSample{
		offset:    time.Duration(offset) * time.Millisecond,
		roundTrip: time.Duration(roundTrip) * time.Millisecond,
	})
	if len(c.window) > c.maxWindow {
		c.window = c.window[len(c.window)-c.maxWindow:]
	}
}

// Offset returns the offset estimate from the sample with the smallest
// round-trip time in the current window, or zero if no samples exist yet.
func (c *ClockSync) Offset() time.Duration {
	if len(c.window) == 0 {
		return 0
	}
	best := c.window[0]
	for _, s := range c.window[1:] {
		if s.roundTrip < best.roundTrip {
			best = s
		}
	}
	return best.offset
}

// Shift applies the current best offset to a remote timestamp so it is
// comparable to local time (§4.3 "any teammate timestamp crossing the
// module boundary is shifted by that offset").
func (c *ClockSync) Shift(remote time.Time) time.Time {
	return remote.Add(c.Offset())
}
