package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// SessionClaims are the registered claims plus the owning user. The token ID is the session row ID.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// SessionTokens signs and verifies session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long a freshly issued session stays valid.
func (s *SessionTokens) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token for session.
func (s *SessionTokens) Sign(session *models.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		UserID: session.UserID.String(),
	})
	return token.SignedString(s.secret)
}

// Parse verifies tokenString and returns the session and user it names.
func (s *SessionTokens) Parse(tokenString string) (sessionID, userID uuid.UUID, err error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, uuid.Nil, errs.NewTokenExpiredError()
		}
		return uuid.Nil, uuid.Nil, errs.NewInvalidTokenError()
	}
	if !token.Valid {
		return uuid.Nil, uuid.Nil, errs.NewInvalidTokenError()
	}

	sessionID, err = uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errs.NewInvalidTokenError()
	}
	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errs.NewInvalidTokenError()
	}
	return sessionID, userID, nil
}
