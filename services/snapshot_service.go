package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DynamoSnapshotSink journals state changes into a single DynamoDB table.
// It is the production StateSink; the in-memory copies stay authoritative
// and a write failure here never reaches the mutation that triggered it.
type DynamoSnapshotSink struct {
	Dynamo *DynamoService
	Table  string
	Clock  Clock
}

type journalEntry struct {
	EntryID     string      `dynamodbav:"entryId"`
	Component   string      `dynamodbav:"component"`
	Record      interface{} `dynamodbav:"record"`
	RecordedAtMs int64      `dynamodbav:"recordedAtMs"`
}

func NewDynamoSnapshotSink(dynamo *DynamoService, table string, clock Clock) *DynamoSnapshotSink {
	if dynamo == nil || table == "" {
		panic("snapshot sink requires a dynamo service and table name")
	}
	if clock == nil {
		clock = NewRealClock()
	}
	return &DynamoSnapshotSink{Dynamo: dynamo, Table: table, Clock: clock}
}

func (s *DynamoSnapshotSink) OnStateChanged(ctx context.Context, component string, record interface{}) error {
	entry := journalEntry{
		EntryID:      uuid.NewString(),
		Component:    component,
		Record:       record,
		RecordedAtMs: NowMs(s.Clock),
	}
	if err := s.Dynamo.PutItem(ctx, s.Table, entry); err != nil {
		return fmt.Errorf("failed to journal %s change: %w", component, err)
	}
	return nil
}
