package models

// User represents a user in the database.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

// RegisterRequest defines the structure for a user registration request.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

// LoginRequest defines the structure for a user login request.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token for later requests.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// ProfileResponse describes an account. Authenticated is set when it was
// resolved from the caller's token.
type ProfileResponse struct {
	Username      string `json:"username"`
	Authenticated bool   `json:"authenticated"`
}

// GuestResponse carries the generated client id of a guest.
type GuestResponse struct {
	ClientID string `json:"clientId"`
}
