package services

import "time"

// Clock abstracts wall-clock time so rate limits and expiry windows are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns the production clock.
func NewRealClock() Clock { return realClock{} }

// NowMs is the millisecond timestamp convention used across all records.
func NowMs(c Clock) int64 { return c.Now().UnixMilli() }
