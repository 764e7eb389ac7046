package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-service/internal/model"
)

func testIdentity() *model.Identity {
	return &model.Identity{ID: "b1", Role: model.RoleBuyer, Username: "alice", Email: "alice@x.com"}
}

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("s3cret", 0)

	token, err := m.Issue(testIdentity())
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "b1", claims.ID)
	assert.Equal(t, model.RoleBuyer, claims.Role)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseRejects(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)
	good, err := m.Issue(testIdentity())
	require.NoError(t, err)

	expired := NewTokenManager("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(testIdentity())
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "b1", Role: model.RoleBuyer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		m     *TokenManager
		token string
	}{
		{"wrong secret", NewTokenManager("other", time.Hour), good},
		{"expired", m, old},
		{"garbage", m, "not.a.token"},
		{"alg none", m, unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))
}
