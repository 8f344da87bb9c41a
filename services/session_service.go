package services

import (
	"errors"
	"fmt"
	"sync"

	"flare_server/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService is the in-process stand-in for the external auth system: it
// issues guest and registered sessions and resolves signed identity tokens.
// The rest of the core only ever sees validated Session values.
type SessionService struct {
	mu        sync.Mutex
	jwtSecret string
	sessions  map[string]*models.Session
}

// IdentityClaims is the shape of a signed identity token.
type IdentityClaims struct {
	Tier        string `json:"tier"`
	Mode        string `json:"mode"`
	AgeVerified bool   `json:"ageVerified"`
	jwt.RegisteredClaims
}

func NewSessionService(jwtSecret string) *SessionService {
	if jwtSecret == "" {
		panic("session service requires a JWT secret")
	}
	return &SessionService{
		jwtSecret: jwtSecret,
		sessions:  make(map[string]*models.Session),
	}
}

// CreateGuestSession issues an anonymous session addressed as session:<token>.
func (ss *SessionService) CreateGuestSession(mode string, ageVerified bool) *models.Session {
	s := &models.Session{
		Token:       uuid.NewString(),
		UserType:    models.UserTypeAnonymous,
		Tier:        models.TierFree,
		Mode:        mode,
		AgeVerified: ageVerified,
	}
	ss.mu.Lock()
	ss.sessions[s.Token] = s
	ss.mu.Unlock()
	return s
}

// CreateUserSession issues a session for a registered user.
func (ss *SessionService) CreateUserSession(userID, tier, mode string, ageVerified bool) *models.Session {
	s := &models.Session{
		Token:       uuid.NewString(),
		UserID:      userID,
		UserType:    models.UserTypeRegistered,
		Tier:        tier,
		Mode:        mode,
		AgeVerified: ageVerified,
	}
	ss.mu.Lock()
	ss.sessions[s.Token] = s
	ss.mu.Unlock()
	return s
}

// GetSession resolves a session token.
func (ss *SessionService) GetSession(token string) (*models.Session, error) {
	ss.mu.Lock()
	s := ss.sessions[token]
	ss.mu.Unlock()
	if s == nil {
		return nil, errors.New("unknown session token")
	}
	return s, nil
}

// ResolveJWT validates a signed identity token and materializes a session
// for the registered user it names.
func (ss *SessionService) ResolveJWT(tokenStr string) (*models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ss.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid identity token")
	}
	mode := claims.Mode
	if mode == "" {
		mode = models.ModeHybrid
	}
	tier := claims.Tier
	if tier == "" {
		tier = models.TierFree
	}
	return ss.CreateUserSession(claims.Subject, tier, mode, claims.AgeVerified), nil
}

// SignIdentityToken mints a signed identity token; used by tests and tooling.
func (ss *SessionService) SignIdentityToken(claims IdentityClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ss.jwtSecret))
}
