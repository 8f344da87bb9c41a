package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"flare_server/models"

	"github.com/google/uuid"
)

// MatchChecker is the slice of the match engine the messaging store consumes.
type MatchChecker interface {
	IsMatched(a, b string) bool
}

const (
	rateWindowMs     = 60000
	maxMediaKeyLen   = 512
	maxMediaMimeLen  = 128
	maxMediaDuration = 300
)

// SendMessageRequest is the inbound shape for ChatService.Send.
type SendMessageRequest struct {
	Kind         string                  `json:"kind"`
	RecipientKey string                  `json:"recipientKey"`
	Text         string                  `json:"text,omitempty"`
	Media        *models.MediaAttachment `json:"media,omitempty"`
}

// ChatService owns every stored message. Threads are derived, keyed by chat
// kind plus the two participant keys sorted (or the spot key for
// location-scoped broadcast threads). Expired messages are purged lazily on
// access, never by a global scan.
type ChatService struct {
	mu          sync.Mutex
	clock       Clock
	blocks      BlockChecker
	matches     MatchChecker
	sink        StateSink
	retention   time.Duration
	rateCap     int
	maxTextLen  int
	bannedTerms []string
	threads     map[string][]*models.ChatMessage
	cursors     map[string]map[string]int64 // threadKey -> reader -> cursor ms
	sendLog     map[string][]int64          // sender -> accepted send times ms
}

func NewChatService(clock Clock, blocks BlockChecker, matches MatchChecker, sink StateSink, retention time.Duration, rateCap, maxTextLen int, bannedTerms []string) *ChatService {
	if clock == nil || blocks == nil || matches == nil {
		panic("chat service requires a clock, block checker and match checker")
	}
	if retention <= 0 || rateCap <= 0 || maxTextLen <= 0 {
		panic("chat service misconfigured: retention/rateCap/maxTextLen")
	}
	return &ChatService{
		clock:       clock,
		blocks:      blocks,
		matches:     matches,
		sink:        sink,
		retention:   retention,
		rateCap:     rateCap,
		maxTextLen:  maxTextLen,
		bannedTerms: bannedTerms,
		threads:     make(map[string][]*models.ChatMessage),
		cursors:     make(map[string]map[string]int64),
		sendLog:     make(map[string][]int64),
	}
}

// ThreadKey builds the canonical key: same two participants in either
// direction always map to the same thread.
func ThreadKey(kind, a, b string) string {
	if models.IsSpotKey(a) {
		return kind + "|" + a
	}
	if models.IsSpotKey(b) {
		return kind + "|" + b
	}
	if a > b {
		a, b = b, a
	}
	return kind + "|" + a + "|" + b
}

// gate applies the session/mode/anonymous checks shared by every operation,
// in the order send validation defines them.
func (cs *ChatService) gate(session *models.Session, kind string) *models.ServiceError {
	if !session.IsValid() {
		return models.NewServiceError(models.ErrCodeInvalidSession, "session is missing or malformed")
	}
	if !session.AgeVerified {
		return models.NewServiceError(models.ErrCodeAgeGateRequired, "age verification required")
	}
	switch kind {
	case models.ChatKindDate:
		if session.Mode != models.ModeDate && session.Mode != models.ModeHybrid {
			return models.NewServiceError(models.ErrCodeUnauthorized, "date chat is not available in this mode")
		}
		if session.UserType != models.UserTypeRegistered {
			return models.NewServiceError(models.ErrCodeAnonymousForbidden, "date chat requires a registered identity")
		}
	case models.ChatKindCruise:
		if session.Mode != models.ModeCruise && session.Mode != models.ModeHybrid {
			return models.NewServiceError(models.ErrCodeUnauthorized, "cruise chat is not available in this mode")
		}
	default:
		return models.NewServiceError(models.ErrCodeUnauthorized, "unknown chat kind").WithContext("kind", kind)
	}
	return nil
}

func (cs *ChatService) sanitizeText(text string) (string, *models.ServiceError) {
	text = strings.TrimSpace(text)
	if len(text) > cs.maxTextLen {
		text = text[:cs.maxTextLen]
	}
	for _, r := range text {
		if r < 0x20 && r != '\n' && r != '\t' {
			return "", models.NewServiceError(models.ErrCodeUnauthorized, "text contains control characters")
		}
	}
	lower := strings.ToLower(text)
	for _, term := range cs.bannedTerms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return "", models.NewServiceError(models.ErrCodeUnauthorized, "text rejected by content policy")
		}
	}
	return text, nil
}

// validateMedia checks the attachment for internal consistency. Mismatches
// are abuse-shaped, not client bugs, so they classify as unauthorized.
func validateMedia(m *models.MediaAttachment) *models.ServiceError {
	reject := models.NewServiceError(models.ErrCodeUnauthorized, "media attachment rejected")
	switch m.Kind {
	case "image", "video", "audio":
	default:
		return reject.WithContext("field", "kind")
	}
	if !strings.HasPrefix(m.MimeType, m.Kind+"/") {
		return reject.WithContext("field", "mimeType")
	}
	if m.ObjectKey == "" || len(m.ObjectKey) > maxMediaKeyLen {
		return reject.WithContext("field", "objectKey")
	}
	if len(m.MimeType) > maxMediaMimeLen {
		return reject.WithContext("field", "mimeType")
	}
	if m.DurationSec < 0 || m.DurationSec > maxMediaDuration {
		return reject.WithContext("field", "durationSec")
	}
	return nil
}

// purgeExpired drops messages whose expiry has passed. Pure over (now, msgs)
// so expiry behavior is directly testable.
func purgeExpired(nowMs int64, msgs []*models.ChatMessage) ([]*models.ChatMessage, int) {
	live := msgs[:0]
	removed := 0
	for _, m := range msgs {
		if m.ExpiresAtMs > 0 && nowMs >= m.ExpiresAtMs {
			removed++
			continue
		}
		live = append(live, m)
	}
	return live, removed
}

// allowSend enforces the sliding 60-second window. Caller holds the lock.
// Only accepted sends are recorded, so the cap frees up exactly when the
// window slides past the oldest of them.
func (cs *ChatService) allowSend(sender string, nowMs int64) bool {
	recent := cs.sendLog[sender][:0]
	for _, ts := range cs.sendLog[sender] {
		if nowMs-ts < rateWindowMs {
			recent = append(recent, ts)
		}
	}
	cs.sendLog[sender] = recent
	if len(recent) >= cs.rateCap {
		return false
	}
	cs.sendLog[sender] = append(recent, nowMs)
	return true
}

// Send validates and stores one outgoing message. The validation order is
// fixed so rejections are deterministic.
func (cs *ChatService) Send(session *models.Session, req SendMessageRequest) (*models.ChatMessage, *models.ServiceError) {
	if serr := cs.gate(session, req.Kind); serr != nil {
		return nil, serr
	}
	sender := session.IdentityKey()
	if req.RecipientKey == "" || req.RecipientKey == sender {
		return nil, models.NewServiceError(models.ErrCodeUnauthorized, "invalid recipient")
	}
	if req.Kind == models.ChatKindDate {
		targetID := models.UserIDFromKey(req.RecipientKey)
		if targetID == "" {
			return nil, models.NewServiceError(models.ErrCodeUnauthorized, "date chat requires a registered recipient")
		}
		if !cs.matches.IsMatched(session.UserID, targetID) {
			return nil, models.NewServiceError(models.ErrCodeUnauthorized, "date chat requires a mutual match")
		}
	}
	text, serr := cs.sanitizeText(req.Text)
	if serr != nil {
		return nil, serr
	}
	if req.Media != nil {
		if serr := validateMedia(req.Media); serr != nil {
			return nil, serr
		}
	}
	if text == "" && req.Media == nil {
		return nil, models.NewServiceError(models.ErrCodeUnauthorized, "message has no content")
	}
	spot := models.IsSpotKey(req.RecipientKey)
	if !spot && cs.blocks.IsBlocked(sender, req.RecipientKey) {
		return nil, models.NewServiceError(models.ErrCodeUserBlocked, "interaction blocked")
	}

	now := NowMs(cs.clock)
	key := ThreadKey(req.Kind, sender, req.RecipientKey)

	cs.mu.Lock()
	if !cs.allowSend(sender, now) {
		cs.mu.Unlock()
		return nil, models.NewServiceError(models.ErrCodeRateLimited, "message rate limit exceeded")
	}
	msgs, _ := purgeExpired(now, cs.threads[key])

	msg := &models.ChatMessage{
		MessageID:     uuid.NewString(),
		ThreadKey:     key,
		Kind:          req.Kind,
		SenderKey:     sender,
		RecipientKey:  req.RecipientKey,
		Text:          text,
		Media:         req.Media,
		CreatedAtMs:   now,
		DeliveredAtMs: now,
	}
	if req.Kind == models.ChatKindCruise {
		msg.ExpiresAtMs = now + cs.retention.Milliseconds()
	}
	cs.threads[key] = append(msgs, msg)
	cs.mu.Unlock()

	notifyStateChanged(cs.sink, "messages", *msg)
	out := *msg
	return &out, nil
}

// decorate returns a copy with ReadAtMs computed against the counterpart's
// read cursor. The stored message is never mutated.
func decorate(msg *models.ChatMessage, counterpartCursor int64) *models.ChatMessage {
	out := *msg
	if counterpartCursor >= msg.CreatedAtMs {
		out.ReadAtMs = counterpartCursor
	}
	return &out
}

// ListMessages returns the thread with the given counterpart, oldest first.
// An expiring-kind thread whose last message just lapsed yields CHAT_EXPIRED
// so callers can tell "existed and lapsed" from "nothing yet".
func (cs *ChatService) ListMessages(session *models.Session, counterpartKey, kind string) ([]*models.ChatMessage, *models.ServiceError) {
	if serr := cs.gate(session, kind); serr != nil {
		return nil, serr
	}
	caller := session.IdentityKey()
	key := ThreadKey(kind, caller, counterpartKey)
	now := NowMs(cs.clock)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	msgs, ok := cs.threads[key]
	if !ok {
		return []*models.ChatMessage{}, nil
	}
	live, _ := purgeExpired(now, msgs)
	cs.threads[key] = live
	if len(live) == 0 {
		if kind == models.ChatKindCruise {
			return nil, models.NewServiceError(models.ErrCodeChatExpired, "chat has expired")
		}
		return []*models.ChatMessage{}, nil
	}

	cursor := cs.cursors[key][counterpartKey]
	out := make([]*models.ChatMessage, 0, len(live))
	for _, m := range live {
		if m.SenderKey == caller && !models.IsSpotKey(counterpartKey) {
			out = append(out, decorate(m, cursor))
		} else {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ListThreads derives, per counterpart, the most recent still-live message.
// Spot threads are boards, not conversations, and are skipped.
func (cs *ChatService) ListThreads(session *models.Session) ([]*models.ThreadSummary, *models.ServiceError) {
	if !session.IsValid() {
		return nil, models.NewServiceError(models.ErrCodeInvalidSession, "session is missing or malformed")
	}
	if !session.AgeVerified {
		return nil, models.NewServiceError(models.ErrCodeAgeGateRequired, "age verification required")
	}
	caller := session.IdentityKey()
	now := NowMs(cs.clock)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	var out []*models.ThreadSummary
	for key, msgs := range cs.threads {
		parts := strings.Split(key, "|")
		if len(parts) != 3 {
			continue // spot thread
		}
		kind, a, b := parts[0], parts[1], parts[2]
		var counterpart string
		switch caller {
		case a:
			counterpart = b
		case b:
			counterpart = a
		default:
			continue
		}
		live, _ := purgeExpired(now, msgs)
		cs.threads[key] = live
		if len(live) == 0 {
			continue
		}
		last := live[len(live)-1]
		if last.SenderKey == caller {
			last = decorate(last, cs.cursors[key][counterpart])
		} else {
			copied := *last
			last = &copied
		}
		out = append(out, &models.ThreadSummary{
			ThreadKey:      key,
			Kind:           kind,
			CounterpartKey: counterpart,
			LastMessage:    last,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAtMs > out[j].LastMessage.CreatedAtMs
	})
	return out, nil
}

// MarkRead advances the caller's read cursor on the thread to now. Cursors
// only ever move forward.
func (cs *ChatService) MarkRead(session *models.Session, counterpartKey, kind string) *models.ServiceError {
	if serr := cs.gate(session, kind); serr != nil {
		return serr
	}
	caller := session.IdentityKey()
	key := ThreadKey(kind, caller, counterpartKey)
	now := NowMs(cs.clock)

	cs.mu.Lock()
	if msgs, ok := cs.threads[key]; ok {
		cs.threads[key], _ = purgeExpired(now, msgs)
	}
	if cs.cursors[key] == nil {
		cs.cursors[key] = make(map[string]int64)
	}
	advanced := false
	if now > cs.cursors[key][caller] {
		cs.cursors[key][caller] = now
		advanced = true
	}
	cs.mu.Unlock()

	if advanced {
		notifyStateChanged(cs.sink, "readCursors", map[string]interface{}{
			"threadKey": key, "readerKey": caller, "cursorMs": now,
		})
	}
	return nil
}

// SweepExpired purges every thread; exposed for schedulers that want
// proactive cleanup instead of the built-in lazy sweeps.
func (cs *ChatService) SweepExpired() int {
	now := NowMs(cs.clock)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	removed := 0
	for key, msgs := range cs.threads {
		live, n := purgeExpired(now, msgs)
		cs.threads[key] = live
		removed += n
	}
	return removed
}
