package models

// Error codes returned across service boundaries.
const (
	ErrCodeInvalidSession     = "INVALID_SESSION"
	ErrCodeAgeGateRequired    = "AGE_GATE_REQUIRED"
	ErrCodeAnonymousForbidden = "ANONYMOUS_FORBIDDEN"
	ErrCodeUnauthorized       = "UNAUTHORIZED_ACTION"
	ErrCodeUserBlocked        = "USER_BLOCKED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeChatExpired        = "CHAT_EXPIRED"
	ErrCodePresenceNotAllowed = "PRESENCE_NOT_ALLOWED"
	ErrCodeMatchingNotAllowed = "MATCHING_NOT_ALLOWED"
)

// Protocol-level codes emitted by the gateway before closing a connection.
const (
	ErrCodeAuthRequired         = "AUTH_REQUIRED"
	ErrCodeAlreadyAuthenticated = "ALREADY_AUTHENTICATED"
	ErrCodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	ErrCodeMalformedFrame       = "MALFORMED_FRAME"
	ErrCodeUnknownType          = "UNKNOWN_TYPE"
	ErrCodeHeartbeatTimeout     = "HEARTBEAT_TIMEOUT"
)

// ServiceError is the structured rejection value every service returns for
// bad input. Infrastructure failures keep using wrapped plain errors.
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WithContext attaches a single context entry, allocating lazily.
func (e *ServiceError) WithContext(key string, value interface{}) *ServiceError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}
