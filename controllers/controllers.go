package controllers

import (
	"net/http"
	"strings"

	"flare_server/models"
)

// SessionGetter resolves bearer tokens into validated sessions.
type SessionGetter interface {
	GetSession(token string) (*models.Session, error)
}

// Broadcaster pushes REST side effects to live connections. Best effort:
// a broadcast failure never fails the HTTP request that caused it.
type Broadcaster interface {
	Broadcast(event string, payload interface{}) error
}

// sessionFromRequest resolves the Authorization bearer token.
func sessionFromRequest(r *http.Request, sessions SessionGetter) (*models.Session, *models.ServiceError) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return nil, models.NewServiceError(models.ErrCodeInvalidSession, "missing bearer token")
	}
	token := strings.TrimSpace(authz[len("Bearer "):])
	session, err := sessions.GetSession(token)
	if err != nil {
		return nil, models.NewServiceError(models.ErrCodeInvalidSession, "unknown session token")
	}
	return session, nil
}
