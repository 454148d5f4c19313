package auth

// Result is the uniform success envelope returned by every use case.
// Failures are returned as typed errors (see errors.go), never encoded in
// the envelope.
type Result struct {
	Status       string       `json:"status"`
	Message      string       `json:"message,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	Data         *AccountData `json:"data,omitempty"`
}

const statusSuccess = "success"

func successResult(message string) *Result {
	return &Result{
		Status:  statusSuccess,
		Message: message,
	}
}
