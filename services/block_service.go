package services

import (
	"sort"
	"sync"

	"flare_server/models"
)

// BlockService owns the symmetric block-edge set. Storage is directional,
// but IsBlocked — the one call every other service makes — reads both
// directions.
type BlockService struct {
	mu        sync.Mutex
	clock     Clock
	sink      StateSink
	blocked   map[string]map[string]bool // blocker -> blocked set
	blockedBy map[string]map[string]bool // reverse index
}

func NewBlockService(clock Clock, sink StateSink) *BlockService {
	if clock == nil {
		panic("block service requires a clock")
	}
	return &BlockService{
		clock:     clock,
		sink:      sink,
		blocked:   make(map[string]map[string]bool),
		blockedBy: make(map[string]map[string]bool),
	}
}

func (bs *BlockService) gate(session *models.Session, targetKey string) *models.ServiceError {
	if !session.IsValid() {
		return models.NewServiceError(models.ErrCodeInvalidSession, "session is missing or malformed")
	}
	if !session.AgeVerified {
		return models.NewServiceError(models.ErrCodeAgeGateRequired, "age verification required")
	}
	if targetKey == "" || targetKey == session.IdentityKey() {
		return models.NewServiceError(models.ErrCodeUnauthorized, "invalid block target")
	}
	return nil
}

// Block adds the directed edge session→target.
func (bs *BlockService) Block(session *models.Session, targetKey string) *models.ServiceError {
	if serr := bs.gate(session, targetKey); serr != nil {
		return serr
	}
	blocker := session.IdentityKey()

	bs.mu.Lock()
	if bs.blocked[blocker] == nil {
		bs.blocked[blocker] = make(map[string]bool)
	}
	bs.blocked[blocker][targetKey] = true
	if bs.blockedBy[targetKey] == nil {
		bs.blockedBy[targetKey] = make(map[string]bool)
	}
	bs.blockedBy[targetKey][blocker] = true
	bs.mu.Unlock()

	notifyStateChanged(bs.sink, "blocks", models.BlockEdge{
		BlockerKey: blocker, BlockedKey: targetKey, Active: true, UpdatedAtMs: NowMs(bs.clock),
	})
	return nil
}

// Unblock removes the directed edge session→target. Removing an edge that
// does not exist is not an error.
func (bs *BlockService) Unblock(session *models.Session, targetKey string) *models.ServiceError {
	if serr := bs.gate(session, targetKey); serr != nil {
		return serr
	}
	blocker := session.IdentityKey()

	bs.mu.Lock()
	delete(bs.blocked[blocker], targetKey)
	delete(bs.blockedBy[targetKey], blocker)
	bs.mu.Unlock()

	notifyStateChanged(bs.sink, "blocks", models.BlockEdge{
		BlockerKey: blocker, BlockedKey: targetKey, Active: false, UpdatedAtMs: NowMs(bs.clock),
	})
	return nil
}

// IsBlocked reports whether either direction carries an edge.
func (bs *BlockService) IsBlocked(a, b string) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.blocked[a][b] || bs.blocked[b][a]
}

// ListBlocked returns the keys the given identity has blocked, sorted.
func (bs *BlockService) ListBlocked(key string) []string {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	out := make([]string, 0, len(bs.blocked[key]))
	for blocked := range bs.blocked[key] {
		out = append(out, blocked)
	}
	sort.Strings(out)
	return out
}
