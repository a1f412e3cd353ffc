package models

// TokenPair is an access/refresh token couple handed out on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	TokenPair
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
