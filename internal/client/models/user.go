package models

// User is the authenticated principal returned by the auth endpoints.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        User   `json:"user"`
}

// RefreshResponse is the payload of a successful token refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Session is a point-in-time copy of the authentication state.
type Session struct {
	Token string
	User  *User
}

// IsAuthenticated reports whether both halves of the session are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}
