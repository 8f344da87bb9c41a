package services

import (
	"testing"

	"flare_server/models"
)

func TestBlock_SymmetricCheck(t *testing.T) {
	bs := NewBlockService(newFakeClock(), nil)
	alice := registeredSession("alice", models.ModeHybrid)

	if serr := bs.Block(alice, "user:bob"); serr != nil {
		t.Fatalf("Block() error = %v", serr)
	}

	if !bs.IsBlocked("user:alice", "user:bob") {
		t.Error("IsBlocked(blocker, blocked) = false, want true")
	}
	if !bs.IsBlocked("user:bob", "user:alice") {
		t.Error("IsBlocked(blocked, blocker) = false, want true")
	}
	if bs.IsBlocked("user:alice", "user:bob") != bs.IsBlocked("user:bob", "user:alice") {
		t.Error("IsBlocked is not symmetric")
	}
}

func TestBlock_DirectionalStorage(t *testing.T) {
	bs := NewBlockService(newFakeClock(), nil)
	alice := registeredSession("alice", models.ModeHybrid)
	bob := registeredSession("bob", models.ModeHybrid)

	bs.Block(alice, "user:bob")
	bs.Block(bob, "user:alice")

	// Removing one direction leaves the other, and the check stays true.
	if serr := bs.Unblock(alice, "user:bob"); serr != nil {
		t.Fatalf("Unblock() error = %v", serr)
	}
	if !bs.IsBlocked("user:alice", "user:bob") {
		t.Error("IsBlocked = false after removing only one direction, want true")
	}
	bs.Unblock(bob, "user:alice")
	if bs.IsBlocked("user:alice", "user:bob") {
		t.Error("IsBlocked = true after removing both directions, want false")
	}
}

func TestBlock_Gates(t *testing.T) {
	bs := NewBlockService(newFakeClock(), nil)

	if serr := bs.Block(nil, "user:bob"); serr == nil || serr.Code != models.ErrCodeInvalidSession {
		t.Errorf("Block(nil session) code = %v, want INVALID_SESSION", serr)
	}

	underage := registeredSession("kid", models.ModeHybrid)
	underage.AgeVerified = false
	if serr := bs.Block(underage, "user:bob"); serr == nil || serr.Code != models.ErrCodeAgeGateRequired {
		t.Errorf("Block(underage) code = %v, want AGE_GATE_REQUIRED", serr)
	}

	alice := registeredSession("alice", models.ModeHybrid)
	if serr := bs.Block(alice, "user:alice"); serr == nil || serr.Code != models.ErrCodeUnauthorized {
		t.Errorf("Block(self) code = %v, want UNAUTHORIZED_ACTION", serr)
	}
}

func TestBlock_ListBlocked(t *testing.T) {
	bs := NewBlockService(newFakeClock(), nil)
	alice := registeredSession("alice", models.ModeHybrid)

	bs.Block(alice, "user:carol")
	bs.Block(alice, "user:bob")

	got := bs.ListBlocked("user:alice")
	if len(got) != 2 || got[0] != "user:bob" || got[1] != "user:carol" {
		t.Errorf("ListBlocked() = %v, want [user:bob user:carol]", got)
	}
	if n := len(bs.ListBlocked("user:bob")); n != 0 {
		t.Errorf("ListBlocked(non-blocker) has %d entries, want 0", n)
	}
}

func TestBlock_SinkNotified(t *testing.T) {
	sink := &recordingSink{}
	bs := NewBlockService(newFakeClock(), sink)
	alice := registeredSession("alice", models.ModeHybrid)

	bs.Block(alice, "user:bob")
	bs.Unblock(alice, "user:bob")

	if n := sink.count("blocks"); n != 2 {
		t.Errorf("sink notified %d times, want 2", n)
	}
}

func TestBlock_FailingSinkDoesNotFailOperation(t *testing.T) {
	sink := &recordingSink{fail: true}
	bs := NewBlockService(newFakeClock(), sink)
	alice := registeredSession("alice", models.ModeHybrid)

	if serr := bs.Block(alice, "user:bob"); serr != nil {
		t.Fatalf("Block() with failing sink error = %v, want nil", serr)
	}
	if !bs.IsBlocked("user:alice", "user:bob") {
		t.Error("block did not take effect despite failing sink")
	}
}
