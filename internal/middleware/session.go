package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"statsdash/pkg/response"
)

const (
	SessionCookieName = "dashboard_session"
	SessionHeaderName = "X-Dashboard-Session"

	sessionContextKey = "sessionID"
	sessionCookieAge  = 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session token")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCookies signs dashboard session ids into HS256 tokens and carries them in an
// HttpOnly cookie. The X-Dashboard-Session header is accepted for API clients.
type SessionCookies struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func NewSessionCookies(secret string, secure bool) *SessionCookies {
	return &SessionCookies{
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
	}
}

// Sign returns a token for id valid for one day
func (s *SessionCookies) Sign(id uuid.UUID) (string, error) {
	now := s.now()
	claims := sessionClaims{
		SessionID: id.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionCookieAge)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Parse verifies tokenString and returns the session id it carries
func (s *SessionCookies) Parse(tokenString string) (uuid.UUID, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad session id", ErrInvalidSession)
	}
	return id, nil
}

// Issue signs id and stores it in the session cookie
func (s *SessionCookies) Issue(c *gin.Context, id uuid.UUID) (string, error) {
	token, err := s.Sign(id)
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(sessionCookieAge.Seconds()), "/", "", s.secure, true)
	return token, nil
}

// Clear removes the session cookie
func (s *SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.secure, true)
}

// Load resolves the session from the cookie, falling back to the header. A valid session
// id is stored on the context; a missing or invalid one is not an error here.
func (s *SessionCookies) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := s.fromRequest(c); err == nil {
			c.Set(sessionContextKey, id)
		}
		c.Next()
	}
}

// Require aborts with 401 unless the request carries a valid session token
func (s *SessionCookies) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.fromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorKind(http.StatusUnauthorized, response.KindUnauthorized, "Dashboard session is missing or invalid"))
			return
		}
		c.Set(sessionContextKey, id)
		c.Next()
	}
}

func (s *SessionCookies) fromRequest(c *gin.Context) (uuid.UUID, error) {
	tokenString, err := c.Cookie(SessionCookieName)
	if err != nil || tokenString == "" {
		tokenString = c.GetHeader(SessionHeaderName)
	}
	if tokenString == "" {
		return uuid.Nil, ErrInvalidSession
	}
	return s.Parse(tokenString)
}

// SessionID returns the session id stored by Load or Require
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
