package models

// Session modes select which interaction surfaces are open.
const (
	ModeCruise = "cruise"
	ModeDate   = "date"
	ModeHybrid = "hybrid"
)

// User types carried on a session.
const (
	UserTypeRegistered = "registered"
	UserTypeAnonymous  = "anonymous"
)

// Tiers (free, plus) only travel through auth_ok; the core never gates on them.
const (
	TierFree = "free"
	TierPlus = "plus"
)

// Chat kinds
const (
	ChatKindDate   = "date"
	ChatKindCruise = "cruise"
)

// Swipe actions
const (
	SwipeActionLike = "like"
	SwipeActionPass = "pass"
)

// StateJournalTable is the DynamoDB table the snapshot sink writes to.
const StateJournalTable = "StateJournal"
