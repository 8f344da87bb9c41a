package services

import (
	"context"
	"log"
)

// StateSink receives a notification after every mutation that changes durable
// state. Contract: best effort only — implementations may fail, callers log
// the failure and never propagate it, because real-time delivery must not
// block on durability.
type StateSink interface {
	OnStateChanged(ctx context.Context, component string, record interface{}) error
}

// NopSink discards all notifications. Used in tests and when no persistence
// backend is configured.
type NopSink struct{}

func (NopSink) OnStateChanged(ctx context.Context, component string, record interface{}) error {
	return nil
}

// notifyStateChanged applies the best-effort contract in one place.
func notifyStateChanged(sink StateSink, component string, record interface{}) {
	if sink == nil {
		return
	}
	if err := sink.OnStateChanged(context.Background(), component, record); err != nil {
		log.Printf("state sink failed for %s: %v", component, err)
	}
}
