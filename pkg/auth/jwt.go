package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer and Audience pin tokens to this API.
	Issuer   = "phonics-coach"
	Audience = "phonics-coach-api"

	clockSkew = 30 * time.Second
)

// ErrNoSubject is returned for a well-signed token without a parent id.
var ErrNoSubject = errors.New("token has no subject")

// Claims are the access token contents. The parent id travels as the
// registered subject.
type Claims struct {
	RecordingConsent bool `json:"rec"`
	ChildAge         int  `json:"age,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims back into the parent they were issued for.
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:           c.Subject,
		RecordingConsent: c.RecordingConsent,
		ChildAge:         c.ChildAge,
	}
}

// JWTManager signs HS256 access tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// GenerateToken signs an access token for p.
func (j *JWTManager) GenerateToken(p Principal) (string, error) {
	if p.UserID == "" {
		return "", ErrNoSubject
	}

	now := j.now()
	claims := &Claims{
		RecordingConsent: p.RecordingConsent,
		ChildAge:         p.ChildAge,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   p.UserID,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateToken parses tokenString and returns its claims. Only HS256
// tokens issued for this API are accepted.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(j.now),
	)

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrNoSubject
	}
	return claims, nil
}
