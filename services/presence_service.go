package services

import (
	"log"
	"math"
	"sync"
	"time"

	"flare_server/models"
)

// Broadcaster is the gateway's fan-out primitive as seen by the services.
type Broadcaster interface {
	Broadcast(event string, payload interface{}) error
}

// metersPerDegreeLat is the fixed conversion for latitude deltas; longitude
// additionally scales by cos(lat), clamped so conversion never blows up near
// the poles.
const (
	metersPerDegreeLat = 111320.0
	minCosLat          = 0.01
)

// PresenceService keeps one disc-randomized presence record per identity and
// sweeps records older than the expiry window lazily on every access.
type PresenceService struct {
	mu      sync.Mutex
	clock   Clock
	rand    func() float64 // uniform in [0,1), injectable for tests
	radiusM float64
	expiry  time.Duration
	bcast   Broadcaster
	sink    StateSink
	records map[string]*models.PresenceRecord
}

func NewPresenceService(clock Clock, randFn func() float64, radiusM float64, expiry time.Duration, bcast Broadcaster, sink StateSink) *PresenceService {
	if clock == nil || randFn == nil {
		panic("presence service requires a clock and a rand source")
	}
	if radiusM < 0 || expiry <= 0 {
		panic("presence service misconfigured: radius/expiry")
	}
	return &PresenceService{
		clock:   clock,
		rand:    randFn,
		radiusM: radiusM,
		expiry:  expiry,
		bcast:   bcast,
		sink:    sink,
		records: make(map[string]*models.PresenceRecord),
	}
}

// randomizeCoords samples a uniform point in a disc of radiusM meters around
// (lat, lng). sqrt on the radius draw keeps the distribution uniform over
// area rather than clustering at the center.
func (ps *PresenceService) randomizeCoords(lat, lng float64) (float64, float64) {
	r := math.Sqrt(ps.rand()) * ps.radiusM
	theta := ps.rand() * 2 * math.Pi
	dx := r * math.Cos(theta)
	dy := r * math.Sin(theta)

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	return lat + dy/metersPerDegreeLat, lng + dx/(metersPerDegreeLat*cosLat)
}

// sweepLocked drops every record older than the expiry window. Caller holds
// the lock. Returns the number removed.
func (ps *PresenceService) sweepLocked(nowMs int64) int {
	removed := 0
	for key, rec := range ps.records {
		if nowMs-rec.UpdatedAtMs >= ps.expiry.Milliseconds() {
			delete(ps.records, key)
			removed++
		}
	}
	return removed
}

// Sweep is the explicit entry point for callers that want proactive cleanup.
func (ps *PresenceService) Sweep() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.sweepLocked(NowMs(ps.clock))
}

// UpdatePresence validates, randomizes and stores the caller's position, then
// announces the randomized record. The raw coordinates are never stored.
func (ps *PresenceService) UpdatePresence(session *models.Session, lat, lng float64, status string) (*models.PresenceRecord, *models.ServiceError) {
	if !session.IsValid() {
		return nil, models.NewServiceError(models.ErrCodeInvalidSession, "session is missing or malformed")
	}
	if session.Mode == models.ModeDate {
		return nil, models.NewServiceError(models.ErrCodePresenceNotAllowed, "presence sharing is not available in date mode")
	}
	if !session.AgeVerified {
		return nil, models.NewServiceError(models.ErrCodeAgeGateRequired, "age verification required")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, models.NewServiceError(models.ErrCodeUnauthorized, "coordinates out of range")
	}

	now := NowMs(ps.clock)
	randLat, randLng := ps.randomizeCoords(lat, lng)
	rec := &models.PresenceRecord{
		IdentityKey: session.IdentityKey(),
		Role:        session.UserType,
		Lat:         randLat,
		Lng:         randLng,
		Status:      status,
		UpdatedAtMs: now,
	}

	ps.mu.Lock()
	ps.sweepLocked(now)
	ps.records[rec.IdentityKey] = rec
	ps.mu.Unlock()

	notifyStateChanged(ps.sink, "presence", *rec)
	if ps.bcast != nil {
		if err := ps.bcast.Broadcast("presence_update", rec); err != nil {
			log.Printf("presence broadcast failed: %v", err)
		}
	}
	return rec, nil
}

// ListActivePresence sweeps, then returns every live record.
func (ps *PresenceService) ListActivePresence() []*models.PresenceRecord {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.sweepLocked(NowMs(ps.clock))
	out := make([]*models.PresenceRecord, 0, len(ps.records))
	for _, rec := range ps.records {
		out = append(out, rec)
	}
	return out
}
