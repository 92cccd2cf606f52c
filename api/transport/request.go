package transport

// LoginRequest carries the credentials submitted by the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
