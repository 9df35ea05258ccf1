package dto

// RegisterRequest payload for new accounts. Roles is optional, comma-joined,
// and may omit the canonical ROLE_ prefix.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Roles    string `json:"roles,omitempty"`
}

// AuthRequest payload for login. Username carries the account email.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for register and login.
type AuthResponse struct {
	Token    string `json:"token"`
	Message  string `json:"message"`
	Username string `json:"username"`
}
