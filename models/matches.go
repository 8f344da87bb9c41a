package models

// Swipe is mutable directional intent: a later swipe for the same ordered
// pair overwrites the earlier one.
type Swipe struct {
	FromUserID string `dynamodbav:"fromUserId" json:"fromUserId"`
	ToUserID   string `dynamodbav:"toUserId" json:"toUserId"`
	Action     string `dynamodbav:"action" json:"action"`
	CreatedAtMs int64 `dynamodbav:"createdAtMs" json:"createdAtMs"`
}

// Match is a permanent historical fact, created once per unordered pair the
// instant both directional likes exist. Users holds the pair sorted.
type Match struct {
	MatchID     string   `dynamodbav:"matchId" json:"matchId"`
	Users       []string `dynamodbav:"users" json:"users"`
	CreatedAtMs int64    `dynamodbav:"createdAtMs" json:"createdAtMs"`
}
