package models

// TokenTypeBearer is returned with every issued access token.
const TokenTypeBearer = "bearer"

// RefreshRequest is the payload for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required" example:"pcr.K7Q2MX4WZ3PLA5TB..."`
}

// LogoutRequest is the payload for logging out.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required" example:"pcr.K7Q2MX4WZ3PLA5TB..."`
}

// AuthResponse is the response after successful login or registration.
type AuthResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	RefreshToken string `json:"refreshToken" example:"pcr.K7Q2MX4WZ3PLA5TB..."`
	TokenType    string `json:"tokenType" example:"bearer"`
	ExpiresIn    int    `json:"expiresIn" example:"900"`
	User         User   `json:"user"`
}

// RefreshResponse is the response after successful token refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	RefreshToken string `json:"refreshToken" example:"pcr.K7Q2MX4WZ3PLA5TB..."`
	TokenType    string `json:"tokenType" example:"bearer"`
	ExpiresIn    int    `json:"expiresIn" example:"900"`
}
