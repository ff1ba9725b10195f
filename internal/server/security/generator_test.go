package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToken_HashFormat(t *testing.T) {
	g := NewTokenGenerator("signing-key", nil)
	expiresAt := time.Unix(1700000000, 0)

	c, err := g.CreateToken(expiresAt, "5b0f7c4e-2c1a-4f0e-9a51-0d7f2c1f9e11", "AbCdEfGhIjKlMnOpQrSt")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("signing-key"))
	mac.Write([]byte(`["AbCdEfGhIjKlMnOpQrSt","5b0f7c4e-2c1a-4f0e-9a51-0d7f2c1f9e11",1700000000]`))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, c.HashedToken)
	assert.Equal(t, "AbCdEfGhIjKlMnOpQrSt", c.Verifier)
}

func TestCreateToken_Deterministic(t *testing.T) {
	g := NewTokenGenerator("k", nil)
	expiresAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	a, err := g.CreateToken(expiresAt, "user-1", "verifierverifier1234")
	require.NoError(t, err)
	b, err := g.CreateToken(expiresAt.Add(300*time.Millisecond), "user-1", "verifierverifier1234")
	require.NoError(t, err)

	assert.Equal(t, a.HashedToken, b.HashedToken, "same inputs must reproduce the hash")
	assert.NotEqual(t, a.Selector, b.Selector, "selector is regenerated on every call")
}

func TestCreateToken_HashBindsAllInputs(t *testing.T) {
	expiresAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	const verifier = "verifierverifier1234"

	base, err := NewTokenGenerator("k", nil).CreateToken(expiresAt, "user-1", verifier)
	require.NoError(t, err)

	tests := []struct {
		name string
		gen  *TokenGenerator
		exp  time.Time
		user string
		ver  string
	}{
		{name: "other user", gen: NewTokenGenerator("k", nil), exp: expiresAt, user: "user-2", ver: verifier},
		{name: "other expiry", gen: NewTokenGenerator("k", nil), exp: expiresAt.Add(time.Second), user: "user-1", ver: verifier},
		{name: "other verifier", gen: NewTokenGenerator("k", nil), exp: expiresAt, user: "user-1", ver: "verifierverifier1235"},
		{name: "other key", gen: NewTokenGenerator("k2", nil), exp: expiresAt, user: "user-1", ver: verifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.gen.CreateToken(tt.exp, tt.user, tt.ver)
			require.NoError(t, err)
			assert.NotEqual(t, base.HashedToken, c.HashedToken)
		})
	}
}

func TestCreateToken_IssuancePath(t *testing.T) {
	g := NewTokenGenerator("k", nil)

	c, err := g.CreateToken(time.Now().Add(time.Hour), "user-1", "")
	require.NoError(t, err)

	assert.Regexp(t, alnum, c.Selector)
	assert.Regexp(t, alnum, c.Verifier)
	assert.Len(t, c.PublicToken(), 2*RandomStringLength)
	assert.Equal(t, c.Selector+c.Verifier, c.PublicToken())
	assert.NotEqual(t, c.Verifier, c.HashedToken)
}

func TestCreateToken_RandomFailure(t *testing.T) {
	g := NewTokenGenerator("k", NewRandomGenerator(failingReader{}))

	_, err := g.CreateToken(time.Now(), "user-1", "")
	require.Error(t, err)

	_, err = g.CreateToken(time.Now(), "user-1", "verifierverifier1234")
	require.Error(t, err, "selector generation also needs randomness")
}
