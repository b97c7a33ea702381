// Package auth issues and verifies dashboard access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pitchside/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Token issuer and audience.
const (
	Issuer   = "pitchside-api"
	Audience = "pitchside-admin"
)

// DefaultTTL is used when JWT_EXPIRES_IN is empty.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned for every token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the verified contents of an access token.
type Claims struct {
	UserID    uint
	Role      models.Role
	JTI       string
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewTokenService returns a TokenService. A nil clock means the real clock.
func NewTokenService(secret string, ttl time.Duration, clock clockwork.Clock) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, clock: clock}
}

// ParseTTL accepts Go durations ("168h") and whole days ("7d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTTL, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid token lifetime %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid token lifetime %q", s)
	}
	return d, nil
}

// TTL returns the lifetime of issued tokens.
func (t *TokenService) TTL() time.Duration { return t.ttl }

// Issue signs a token for user.
func (t *TokenService) Issue(user *models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := t.clock.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iss":  Issuer,
		"aud":  Audience,
		"exp":  now.Add(t.ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  newJTI(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// newJTI creates a unique token id used for revocation.
func newJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

// Parse verifies signature, issuer, audience and lifetime and returns the claims.
func (t *TokenService) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := mc.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UserID: uint(id), ExpiresAt: exp.Time}
	if role, ok := mc["role"].(string); ok {
		claims.Role = models.Role(role)
	}
	if jti, ok := mc["jti"].(string); ok {
		claims.JTI = jti
	}
	return claims, nil
}
