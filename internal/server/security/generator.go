package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// TokenGenerator mints selector/verifier pairs and the HMAC that binds the
// verifier to a user and an expiry.
type TokenGenerator struct {
	signingKey []byte
	random     *RandomGenerator
}

func NewTokenGenerator(signingKey string, random *RandomGenerator) *TokenGenerator {
	if random == nil {
		random = NewRandomGenerator(nil)
	}
	return &TokenGenerator{signingKey: []byte(signingKey), random: random}
}

// CreateToken returns the components of a token expiring at expiresAt for the
// given user identifier.
//
// With an empty verifier a new one is generated (issuance). A non-empty
// verifier is used as-is, which lets validation re-derive the hash of a
// presented token. A new selector is generated either way.
func (g *TokenGenerator) CreateToken(expiresAt time.Time, userIdentifier string, verifier string) (*TokenComponents, error) {
	if verifier == "" {
		v, err := g.random.GetRandomAlphaNumStr()
		if err != nil {
			return nil, fmt.Errorf("error generating verifier: %w", err)
		}
		verifier = v
	}

	selector, err := g.random.GetRandomAlphaNumStr()
	if err != nil {
		return nil, fmt.Errorf("error generating selector: %w", err)
	}

	hashed, err := g.hash(verifier, userIdentifier, expiresAt)
	if err != nil {
		return nil, err
	}

	return &TokenComponents{
		Selector:    selector,
		Verifier:    verifier,
		HashedToken: hashed,
	}, nil
}

func (g *TokenGenerator) hash(verifier, userIdentifier string, expiresAt time.Time) (string, error) {
	data, err := json.Marshal([]any{verifier, userIdentifier, expiresAt.Unix()})
	if err != nil {
		return "", fmt.Errorf("unable to encode data for secured token generation: %w", err)
	}

	mac := hmac.New(sha256.New, g.signingKey)
	mac.Write(data)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
