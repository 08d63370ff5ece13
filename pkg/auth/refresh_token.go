package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	refreshPrefix = "pcr"
	familyLen     = 16
	secretLen     = 26
)

// ErrMalformedRefreshToken is returned by Parse for anything that is not a
// refresh token issued here.
var ErrMalformedRefreshToken = errors.New("malformed refresh token")

// RefreshToken is a freshly issued token. Only Hash is ever stored.
type RefreshToken struct {
	Value    string
	FamilyID string
	Hash     string
}

// RefreshTokenGenerator issues refresh tokens of the form
// pcr.<family>.<secret>. Every token issued after a login shares that
// login's family, which is what lets a replayed token revoke the others.
type RefreshTokenGenerator interface {
	// Issue starts a new family.
	Issue() (RefreshToken, error)
	// Rotate issues the next token of familyID.
	Rotate(familyID string) (RefreshToken, error)
	// Parse returns the family of token without checking it is current.
	Parse(token string) (familyID string, err error)
	// Hash returns the stored form of token.
	Hash(token string) string
	// Matches reports in constant time whether token hashes to hash.
	Matches(token, hash string) bool
}

type refreshTokenGenerator struct {
	random func() string
}

// NewRefreshTokenGenerator returns a generator backed by crypto/rand.
func NewRefreshTokenGenerator() RefreshTokenGenerator {
	return &refreshTokenGenerator{random: rand.Text}
}

func (g *refreshTokenGenerator) Issue() (RefreshToken, error) {
	return g.Rotate(g.random()[:familyLen])
}

func (g *refreshTokenGenerator) Rotate(familyID string) (RefreshToken, error) {
	if !isBase32(familyID, familyLen) {
		return RefreshToken{}, ErrMalformedRefreshToken
	}
	value := refreshPrefix + "." + familyID + "." + g.random()[:secretLen]
	return RefreshToken{Value: value, FamilyID: familyID, Hash: g.Hash(value)}, nil
}

func (g *refreshTokenGenerator) Parse(token string) (string, error) {
	prefix, rest, ok := strings.Cut(token, ".")
	if !ok || prefix != refreshPrefix {
		return "", ErrMalformedRefreshToken
	}
	family, secret, ok := strings.Cut(rest, ".")
	if !ok || !isBase32(family, familyLen) || !isBase32(secret, secretLen) {
		return "", ErrMalformedRefreshToken
	}
	return family, nil
}

func (g *refreshTokenGenerator) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (g *refreshTokenGenerator) Matches(token, hash string) bool {
	if hash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.Hash(token)), []byte(hash)) == 1
}

// isBase32 checks s against the alphabet rand.Text draws from.
func isBase32(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= '2' && r <= '7') {
			return false
		}
	}
	return true
}
