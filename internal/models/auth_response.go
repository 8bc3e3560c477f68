package models

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// UserResponse is the public view of a user; the password hash never leaves the service.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Name        string `json:"name"`
}

// ProfileResponse is returned by GET /api/user/profile
type ProfileResponse struct {
	Name string `json:"name"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail  string `json:"detail"`
	Details string `json:"details,omitempty"`
}
