package users

// User is an account record in the item store. The password field holds
// a bcrypt hash, never the plaintext, and is stripped from API output.
type User struct {
	ItemID   string `json:"itemID"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Time     int64  `json:"time"`
}

// Public returns a copy safe to serialize in responses.
func (u *User) Public() *User {
	out := *u
	out.Password = ""
	return &out
}

// RegisterRequest is the input for creating a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the input for exchanging credentials for a token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token alongside the account it
// authenticates.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
