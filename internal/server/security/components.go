package security

// TokenComponents are the parts of a freshly created token. Only Selector and
// HashedToken are persisted.
type TokenComponents struct {
	Selector    string
	Verifier    string
	HashedToken string
}

// PublicToken is the string handed to the user: selector followed by verifier.
func (c *TokenComponents) PublicToken() string {
	return c.Selector + c.Verifier
}
