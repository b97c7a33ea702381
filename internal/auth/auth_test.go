package auth

import (
	"strings"
	"testing"
	"time"

	"pitchside/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func testUser() *models.User {
	u := &models.User{Email: "mod@example.com", Role: models.RoleModerator}
	u.ID = 7
	return u
}

func TestIssueParse_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleModerator, claims.Role)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestParse_ExpiredToken(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewTokenService(testSecret, time.Hour, clock)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_TamperedToken(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenService("a-completely-different-secret-value!!", time.Hour, nil)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsForeignIssuerAndAlgorithm(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	now := time.Now()

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7", "iss": "someone-else", "aud": Audience, "exp": now.Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "7", "iss": Issuer, "aud": Audience, "exp": now.Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssue_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour, nil).Issue(testUser())
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "", want: DefaultTTL},
		{in: "168h", want: 168 * time.Hour},
		{in: "30d", want: 30 * 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "0d", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
}
