package rpcclient

import "time"

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *manualClock) now() time.Time { return m.t }

func (m *manualClock) advance(ms int64) {
	m.t = m.t.Add(time.Duration(ms) * time.Millisecond)
}
