package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	token, err := iss.Issue("somchai", RoleAdmin, "Somchai")
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "somchai", claims.Username)
	assert.Equal(t, "Somchai", claims.DisplayName)
	assert.True(t, claims.IsAdmin())
}

func TestIssuer_RejectsOtherSecret(t *testing.T) {
	token, err := NewIssuer("a", time.Hour).Issue("u", "staff", "U")
	require.NoError(t, err)

	_, err = NewIssuer("b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := iss.Issue("u", "staff", "U")
	require.NoError(t, err)

	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", 0).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))

	assert.True(t, CheckPassword("admin", "admin"))
	assert.False(t, CheckPassword("admin", "Admin"))
	assert.False(t, CheckPassword("", "x"))
}

func TestCompareDummy_CostsFullBcryptCheck(t *testing.T) {
	cost, err := bcrypt.Cost(dummyHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.Same(t, &dummyHash()[0], &dummyHash()[0])

	assert.NotPanics(t, func() { CompareDummy("anything") })
}
