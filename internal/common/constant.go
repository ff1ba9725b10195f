// Package common contains shared constants and sentinel errors used across
// carmeet components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the admin
// access token on maintenance requests.
const AccessTokenHeaderName = "access_token"

// TokenHeaderName is the header under which activation e-mails carry the
// public token, so clients can pick it up without parsing the link.
const TokenHeaderName = "X-Token"
