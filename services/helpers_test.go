package services

import (
	"context"
	"sync"
	"time"

	"flare_server/models"
)

// fakeClock is a hand-advanced clock for deterministic expiry/rate tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1700000000000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingSink captures state-change notifications.
type recordingSink struct {
	mu         sync.Mutex
	components []string
	fail       bool
}

func (s *recordingSink) OnStateChanged(ctx context.Context, component string, record interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = append(s.components, component)
	if s.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (s *recordingSink) count(component string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.components {
		if c == component {
			n++
		}
	}
	return n
}

// recordingBroadcaster captures events the services push out.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
	last   interface{}
}

func (b *recordingBroadcaster) Broadcast(event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	b.last = payload
	return nil
}

func registeredSession(userID, mode string) *models.Session {
	return &models.Session{
		Token:       "tok-" + userID,
		UserID:      userID,
		UserType:    models.UserTypeRegistered,
		Tier:        models.TierFree,
		Mode:        mode,
		AgeVerified: true,
	}
}

func guestSession(token, mode string) *models.Session {
	return &models.Session{
		Token:       token,
		UserType:    models.UserTypeAnonymous,
		Tier:        models.TierFree,
		Mode:        mode,
		AgeVerified: true,
	}
}
