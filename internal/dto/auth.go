package dto

// ── auth DTOs ──

// LoginRequest login by email or registration number.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // email or reg number
	Password   string `json:"password"   binding:"required"`
}

// RefreshTokenRequest refresh token exchange.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse token pair.
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // access token lifetime in seconds
	Account      AccountResponse `json:"account"`
}

// AccountResponse account without credentials.
type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	RegNumber string `json:"reg_number,omitempty"`
	Role      string `json:"role"`
}
