package mfasdk

import "time"

// FactorTOTP is the only factor type currently supported.
const FactorTOTP = "totp"

// SetupRequest starts (or restarts) enrollment.
type SetupRequest struct {
	Type string `json:"type,omitempty" example:"totp"`
}

// SetupResponse carries the new shared secret. It is shown once.
type SetupResponse struct {
	Secret          string `json:"secret" example:"JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"`
	ProvisioningURI string `json:"provisioning_uri" example:"otpauth://totp/Campus:alice@school.example?algorithm=SHA1&digits=6&issuer=Campus&period=30&secret=JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"`
	QRCode          string `json:"qr_code" example:"data:image/png;base64,iVBORw0KGgo..."`
	Issuer          string `json:"issuer" example:"Campus"`
	Account         string `json:"account" example:"alice@school.example"`
}

// CodeRequest submits a TOTP or backup code.
type CodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// BackupCodesResponse returns freshly issued backup codes. They are shown once.
type BackupCodesResponse struct {
	Codes []string `json:"codes" example:"ABCDE-FGHJK,LMNPQ-RSTUV"`
}

// VerifyResponse reports whether the submitted code was accepted.
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"MFA disabled"`
}

// StatusResponse describes the caller's MFA configuration.
type StatusResponse struct {
	Enabled              bool       `json:"enabled"`
	State                string     `json:"state" example:"enabled"`
	Type                 string     `json:"type,omitempty" example:"totp"`
	ConfirmedAt          *time.Time `json:"confirmed_at,omitempty"`
	BackupCodesRemaining int        `json:"backup_codes_remaining"`
}

// Attempt is one verification ledger entry.
type Attempt struct {
	ID         string    `json:"id" example:"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"`
	Operation  string    `json:"operation" example:"verify"`
	Method     string    `json:"method" example:"totp"`
	Outcome    string    `json:"outcome" example:"success"`
	SourceIP   string    `json:"source_ip,omitempty" example:"203.0.113.7"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AttemptsResponse lists recent attempts, newest first.
type AttemptsResponse struct {
	Attempts []Attempt `json:"attempts"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports readiness of the service's dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Keys     string `json:"keys"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_code"`
	ErrorDescription string `json:"error_description" example:"the submitted code did not verify"`
}
