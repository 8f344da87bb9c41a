package services

import (
	"testing"

	"flare_server/models"
)

func newMatchFixture() (*MatchService, *BlockService, *fakeClock) {
	clock := newFakeClock()
	blocks := NewBlockService(clock, nil)
	return NewMatchService(clock, blocks, nil), blocks, clock
}

func TestRecordSwipe_MutualLikeCreatesOneMatch(t *testing.T) {
	ms, _, _ := newMatchFixture()
	alice := registeredSession("alice", models.ModeDate)
	bob := registeredSession("bob", models.ModeDate)

	match, serr := ms.RecordSwipe(alice, "bob", models.SwipeActionLike)
	if serr != nil {
		t.Fatalf("first swipe error = %v", serr)
	}
	if match != nil {
		t.Fatal("match created on first directional like, want nil")
	}

	match, serr = ms.RecordSwipe(bob, "alice", models.SwipeActionLike)
	if serr != nil {
		t.Fatalf("second swipe error = %v", serr)
	}
	if match == nil {
		t.Fatal("no match created on second directional like")
	}

	aliceMatches := ms.ListMatches("alice")
	bobMatches := ms.ListMatches("bob")
	if len(aliceMatches) != 1 || len(bobMatches) != 1 {
		t.Fatalf("ListMatches lengths = %d, %d, want 1, 1", len(aliceMatches), len(bobMatches))
	}
	if aliceMatches[0].MatchID != bobMatches[0].MatchID {
		t.Error("participants see different match ids")
	}
	if !ms.IsMatched("alice", "bob") || !ms.IsMatched("bob", "alice") {
		t.Error("IsMatched not symmetric for the matched pair")
	}

	// Repeating the like must not mint a second match.
	if m, _ := ms.RecordSwipe(alice, "bob", models.SwipeActionLike); m != nil {
		t.Error("repeated like created a second match")
	}
	if len(ms.ListMatches("alice")) != 1 {
		t.Error("repeated like duplicated the match index entry")
	}
}

func TestRecordSwipe_LaterPassRetractsLike(t *testing.T) {
	ms, _, _ := newMatchFixture()
	alice := registeredSession("alice", models.ModeDate)
	bob := registeredSession("bob", models.ModeDate)

	ms.RecordSwipe(alice, "bob", models.SwipeActionLike)
	ms.RecordSwipe(alice, "bob", models.SwipeActionPass)

	if match, _ := ms.RecordSwipe(bob, "alice", models.SwipeActionLike); match != nil {
		t.Error("match created although the earlier like was overwritten by a pass")
	}
	if ms.IsMatched("alice", "bob") {
		t.Error("IsMatched = true without mutual likes")
	}
}

func TestRecordSwipe_MatchSurvivesLaterPass(t *testing.T) {
	ms, _, _ := newMatchFixture()
	alice := registeredSession("alice", models.ModeDate)
	bob := registeredSession("bob", models.ModeDate)

	ms.RecordSwipe(alice, "bob", models.SwipeActionLike)
	ms.RecordSwipe(bob, "alice", models.SwipeActionLike)
	ms.RecordSwipe(alice, "bob", models.SwipeActionPass)

	if !ms.IsMatched("alice", "bob") {
		t.Error("match retracted by a later pass, want permanent")
	}
	if len(ms.ListMatches("bob")) != 1 {
		t.Error("match index lost after a later pass")
	}
}

func TestRecordSwipe_Gates(t *testing.T) {
	ms, blocks, _ := newMatchFixture()

	guest := guestSession("g1", models.ModeHybrid)
	if _, serr := ms.RecordSwipe(guest, "bob", models.SwipeActionLike); serr == nil || serr.Code != models.ErrCodeAnonymousForbidden {
		t.Errorf("guest swipe code = %v, want ANONYMOUS_FORBIDDEN", serr)
	}

	cruiser := registeredSession("alice", models.ModeCruise)
	if _, serr := ms.RecordSwipe(cruiser, "bob", models.SwipeActionLike); serr == nil || serr.Code != models.ErrCodeMatchingNotAllowed {
		t.Errorf("cruise-mode swipe code = %v, want MATCHING_NOT_ALLOWED", serr)
	}

	alice := registeredSession("alice", models.ModeDate)
	if _, serr := ms.RecordSwipe(alice, "alice", models.SwipeActionLike); serr == nil || serr.Code != models.ErrCodeUnauthorized {
		t.Errorf("self swipe code = %v, want UNAUTHORIZED_ACTION", serr)
	}
	if _, serr := ms.RecordSwipe(alice, "bob", "superlike"); serr == nil || serr.Code != models.ErrCodeUnauthorized {
		t.Errorf("unknown action code = %v, want UNAUTHORIZED_ACTION", serr)
	}

	blocks.Block(registeredSession("bob", models.ModeDate), "user:alice")
	if _, serr := ms.RecordSwipe(alice, "bob", models.SwipeActionLike); serr == nil || serr.Code != models.ErrCodeUserBlocked {
		t.Errorf("blocked swipe code = %v, want USER_BLOCKED", serr)
	}
}

func TestRecordSwipe_SinkNotified(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	ms := NewMatchService(clock, NewBlockService(clock, nil), sink)
	alice := registeredSession("alice", models.ModeDate)
	bob := registeredSession("bob", models.ModeDate)

	ms.RecordSwipe(alice, "bob", models.SwipeActionLike)
	ms.RecordSwipe(bob, "alice", models.SwipeActionLike)

	if n := sink.count("swipes"); n != 2 {
		t.Errorf("swipe notifications = %d, want 2", n)
	}
	if n := sink.count("matches"); n != 1 {
		t.Errorf("match notifications = %d, want 1", n)
	}
}
