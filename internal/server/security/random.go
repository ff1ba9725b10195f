// Package security implements the split-token primitives: a random string
// generator and the selector/verifier token generator that signs verifiers
// with HMAC-SHA256.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// RandomStringLength is the length of selectors and verifiers.
const RandomStringLength = 20

var base64Stripper = strings.NewReplacer("/", "", "+", "", "=", "")

// RandomGenerator produces fixed-length alphanumeric strings.
type RandomGenerator struct {
	src io.Reader
}

// NewRandomGenerator reads randomness from src, or from crypto/rand when src
// is nil.
func NewRandomGenerator(src io.Reader) *RandomGenerator {
	if src == nil {
		src = rand.Reader
	}
	return &RandomGenerator{src: src}
}

// GetRandomAlphaNumStr returns exactly RandomStringLength characters taken
// from the base64 alphabet without '/', '+' and '='. A failing random source
// is reported as an error; there is no fallback.
func (g *RandomGenerator) GetRandomAlphaNumStr() (string, error) {
	var sb strings.Builder
	sb.Grow(RandomStringLength)

	for sb.Len() < RandomStringLength {
		size := RandomStringLength - sb.Len()

		buf := make([]byte, size)
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", fmt.Errorf("error reading random bytes: %w", err)
		}

		chunk := base64Stripper.Replace(base64.StdEncoding.EncodeToString(buf))
		if len(chunk) > size {
			chunk = chunk[:size]
		}
		sb.WriteString(chunk)
	}

	return sb.String(), nil
}
