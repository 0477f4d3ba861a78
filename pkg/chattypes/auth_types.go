// Package chattypes defines authentication request and response types for MediWise.
package chattypes

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthPayload is the opaque success body of the auth endpoints.
// The session itself lives in an HTTP-only cookie and is never read by the client.
type AuthPayload struct {
	Message string `json:"message,omitempty"`
}
