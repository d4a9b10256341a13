package lifecycle

import "time"

// Clock is the injected monotonic sleep primitive used for retry
// pacing. Kept behind an interface so tests can observe sleep
// arguments without real time passing, following the teacher's pattern
// of injecting transport/time seams (e.g. link.go's injected context
// deadlines) rather than reaching for time.Sleep directly.
type Clock interface {
	Sleep(d time.Duration)
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by time.Sleep.
func NewSystemClock() Clock { return systemClock{} }

func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// releaseRetryInterval is the fixed backoff between DETACH retries
// inside RELEASE (spec §4.4).
const releaseRetryInterval = 250 * time.Millisecond
