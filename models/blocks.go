package models

// BlockEdge records one direction of a block. Checking is symmetric, storage
// is not: each direction is added and removed independently.
type BlockEdge struct {
	BlockerKey  string `dynamodbav:"blockerKey" json:"blockerKey"`
	BlockedKey  string `dynamodbav:"blockedKey" json:"blockedKey"`
	Active      bool   `dynamodbav:"active" json:"active"`
	UpdatedAtMs int64  `dynamodbav:"updatedAtMs" json:"updatedAtMs"`
}
