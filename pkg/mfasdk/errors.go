package mfasdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeInvalidCode       = "invalid_code"
	ErrorCodeInvalidState      = "invalid_state"
	ErrorCodeUnsupportedFactor = "unsupported_factor"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// APIError is an error response from the service. The server writes it
// with WriteError and the client parses it back from the response body.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code so callers can write errors.Is(err, mfasdk.ErrInvalidCode).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as a no-store JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	// ErrInvalidCode: the submitted TOTP or backup code did not verify.
	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "the submitted code did not verify",
	}

	// ErrInvalidState: the operation is not allowed in the current MFA state,
	// e.g. enable without a pending setup or verify while MFA is disabled.
	ErrInvalidState = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidState,
		Description: "operation not permitted in the current MFA state",
	}

	ErrUnsupportedFactor = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedFactor,
		Description: "unsupported factor type",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(status int, body []byte) error {
	var env ErrorResponse
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &APIError{StatusCode: status, Code: env.Error, Description: env.ErrorDescription}
	}
	return &APIError{
		StatusCode:  status,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
	}
}
