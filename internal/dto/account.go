package dto

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email string `json:"email"`
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AccountResponse is returned by /login and /register on success.
type AccountResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
}

// AccountFailure is the account-route error payload. It is sent with
// HTTP 200; clients branch on ErrorCode.
type AccountFailure struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}
