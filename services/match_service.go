package services

import (
	"sync"

	"flare_server/models"

	"github.com/google/uuid"
)

// BlockChecker is the slice of the block registry everyone else consumes.
type BlockChecker interface {
	IsBlocked(a, b string) bool
}

// MatchService records directional swipe intents and turns the second
// directional like of a pair into a permanent match record.
type MatchService struct {
	mu      sync.Mutex
	clock   Clock
	blocks  BlockChecker
	sink    StateSink
	swipes  map[string]string // "from|to" -> action, later swipe overwrites
	matches map[string]*models.Match
	byUser  map[string][]*models.Match
}

func NewMatchService(clock Clock, blocks BlockChecker, sink StateSink) *MatchService {
	if clock == nil || blocks == nil {
		panic("match service requires a clock and a block checker")
	}
	return &MatchService{
		clock:   clock,
		blocks:  blocks,
		sink:    sink,
		swipes:  make(map[string]string),
		matches: make(map[string]*models.Match),
		byUser:  make(map[string][]*models.Match),
	}
}

func swipeKey(from, to string) string { return from + "|" + to }

// pairKey is order-independent so lookups are symmetric regardless of who
// swiped last.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// RecordSwipe stores the directional edge and returns the match record if
// this swipe completed a mutual like, nil otherwise.
func (ms *MatchService) RecordSwipe(session *models.Session, targetID, action string) (*models.Match, *models.ServiceError) {
	if !session.IsValid() {
		return nil, models.NewServiceError(models.ErrCodeInvalidSession, "session is missing or malformed")
	}
	if session.UserType != models.UserTypeRegistered {
		return nil, models.NewServiceError(models.ErrCodeAnonymousForbidden, "guests cannot swipe")
	}
	if session.Mode == models.ModeCruise {
		return nil, models.NewServiceError(models.ErrCodeMatchingNotAllowed, "matching is not available in cruise mode")
	}
	if targetID == "" || targetID == session.UserID {
		return nil, models.NewServiceError(models.ErrCodeUnauthorized, "invalid swipe target")
	}
	if action != models.SwipeActionLike && action != models.SwipeActionPass {
		return nil, models.NewServiceError(models.ErrCodeUnauthorized, "unknown swipe action").WithContext("action", action)
	}
	from := session.UserID
	if ms.blocks.IsBlocked(models.UserKey(from), models.UserKey(targetID)) {
		return nil, models.NewServiceError(models.ErrCodeUserBlocked, "interaction blocked")
	}

	now := NowMs(ms.clock)

	ms.mu.Lock()
	ms.swipes[swipeKey(from, targetID)] = action

	var created *models.Match
	if action == models.SwipeActionLike && ms.swipes[swipeKey(targetID, from)] == models.SwipeActionLike {
		pk := pairKey(from, targetID)
		if ms.matches[pk] == nil {
			users := []string{from, targetID}
			if users[0] > users[1] {
				users[0], users[1] = users[1], users[0]
			}
			created = &models.Match{MatchID: uuid.NewString(), Users: users, CreatedAtMs: now}
			ms.matches[pk] = created
			ms.byUser[from] = append(ms.byUser[from], created)
			ms.byUser[targetID] = append(ms.byUser[targetID], created)
		}
	}
	ms.mu.Unlock()

	notifyStateChanged(ms.sink, "swipes", models.Swipe{FromUserID: from, ToUserID: targetID, Action: action, CreatedAtMs: now})
	if created != nil {
		notifyStateChanged(ms.sink, "matches", *created)
	}
	return created, nil
}

// IsMatched reports whether a match record exists for the unordered pair.
func (ms *MatchService) IsMatched(a, b string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.matches[pairKey(a, b)] != nil
}

// ListMatches returns all matches involving userID, in creation order.
func (ms *MatchService) ListMatches(userID string) []*models.Match {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]*models.Match, len(ms.byUser[userID]))
	copy(out, ms.byUser[userID])
	return out
}
