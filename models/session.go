package models

import "strings"

// Session is the validated session object the auth layer hands us.
type Session struct {
	Token       string `json:"token"`
	UserID      string `json:"userId,omitempty"`
	UserType    string `json:"userType"`
	Tier        string `json:"tier"`
	Mode        string `json:"mode"`
	AgeVerified bool   `json:"ageVerified"`
}

// IdentityKey returns the key this session is addressed by across
// presence, chat, blocking and matching. Registered users get a stable
// user:<id> key, guests a per-session one.
func (s *Session) IdentityKey() string {
	if s.UserType == UserTypeRegistered && s.UserID != "" {
		return UserKey(s.UserID)
	}
	return GuestKey(s.Token)
}

// IsValid reports whether the session has the minimum shape the services
// require before any further gating.
func (s *Session) IsValid() bool {
	if s == nil || s.Token == "" {
		return false
	}
	switch s.Mode {
	case ModeCruise, ModeDate, ModeHybrid:
	default:
		return false
	}
	if s.UserType == UserTypeRegistered && s.UserID == "" {
		return false
	}
	return true
}

func UserKey(userID string) string   { return "user:" + userID }
func GuestKey(token string) string   { return "session:" + token }
func SpotKey(spotID string) string   { return "spot:" + spotID }
func IsUserKey(key string) bool      { return strings.HasPrefix(key, "user:") }
func IsSpotKey(key string) bool      { return strings.HasPrefix(key, "spot:") }

// UserIDFromKey strips the user: prefix; empty string if key is not a user key.
func UserIDFromKey(key string) string {
	if !IsUserKey(key) {
		return ""
	}
	return strings.TrimPrefix(key, "user:")
}
