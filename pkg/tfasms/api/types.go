package api

// ValidateRequest carries the code the user typed
type ValidateRequest struct {
	Code string `json:"code"`
}

// ValidateResponse is returned when a code is accepted
type ValidateResponse struct {
	Message string `json:"message"`
}

// BeginResponse is returned after a verification challenge starts
type BeginResponse struct {
	Message string `json:"message"`
}

// ResendResponse is returned after a fresh code was dispatched
type ResendResponse struct {
	Message string `json:"message"`
}

// ClearResponse is returned after verification state was discarded
type ClearResponse struct {
	Message string `json:"message"`
}

// StatusResponse describes the current verification round
type StatusResponse struct {
	Ready             bool `json:"ready"`
	CanResend         bool `json:"can_resend"`
	CooldownSeconds   int  `json:"cooldown_seconds"`
	AttemptsRemaining int  `json:"attempts_remaining"`
}

// ErrorResponse represents an error response. Errors carries per-field
// messages for form validation failures.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}
