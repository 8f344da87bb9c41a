package models

// PresenceRecord holds the randomized position we are willing to share.
// Raw coordinates never leave the update call that produced this record.
type PresenceRecord struct {
	IdentityKey string  `dynamodbav:"identityKey" json:"identityKey"`
	Role        string  `dynamodbav:"role" json:"role"`
	Lat         float64 `dynamodbav:"lat" json:"lat"`
	Lng         float64 `dynamodbav:"lng" json:"lng"`
	Status      string  `dynamodbav:"status,omitempty" json:"status,omitempty"`
	UpdatedAtMs int64   `dynamodbav:"updatedAtMs" json:"updatedAtMs"`
}
