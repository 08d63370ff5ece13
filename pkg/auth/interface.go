package auth

//go:generate mockgen -destination=mocks/mock_jwt.go -package=mocks phonics-coach/pkg/auth TokenManager

// TokenManager issues and checks parent access tokens.
type TokenManager interface {
	// GenerateToken signs an access token for p.
	GenerateToken(p Principal) (string, error)
	// ValidateToken checks signature, issuer, audience and expiry.
	ValidateToken(tokenString string) (*Claims, error)
}

var _ TokenManager = (*JWTManager)(nil)
