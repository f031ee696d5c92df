package domain

import "time"

// State is the lifecycle state of a user's MFA configuration.
type State string

const (
	StateDisabled            State = "disabled"
	StatePendingConfirmation State = "pending_confirmation"
	StateEnabled             State = "enabled"
)

// FactorType identifies the second factor mechanism.
type FactorType string

const FactorTOTP FactorType = "totp"

// Supported reports whether the factor type is implemented.
func (f FactorType) Supported() bool {
	return f == FactorTOTP
}

// Configuration is a user's MFA record. There is at most one per user.
//
// Secret is set iff State is PendingConfirmation or Enabled. PendingSecret
// holds a re-enrollment secret while State is Enabled; the current Secret
// keeps verifying until the pending one is confirmed. Both are sealed at
// rest and only ever handled in plaintext inside the service.
type Configuration struct {
	UserID        string     `db:"user_id"`
	Type          FactorType `db:"type"`
	State         State      `db:"state"`
	Secret        string     `db:"secret"`
	PendingSecret string     `db:"pending_secret"`
	Version       int64      `db:"version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	ConfirmedAt   *time.Time `db:"confirmed_at"`
	DisabledAt    *time.Time `db:"disabled_at"`
}

// Enabled reports whether verification is currently required.
func (c Configuration) Enabled() bool { return c.State == StateEnabled }

// AwaitingConfirmation reports whether there is a secret waiting for its
// first code, either an initial enrollment or a re-enrollment.
func (c Configuration) AwaitingConfirmation() bool {
	return c.State == StatePendingConfirmation ||
		(c.State == StateEnabled && c.PendingSecret != "")
}

// BackupCode is a single-use recovery credential. Only the hash is stored.
type BackupCode struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	BatchID   string     `db:"batch_id"`
	CodeHash  string     `db:"code_hash"`
	CreatedAt time.Time  `db:"created_at"`
	UsedAt    *time.Time `db:"used_at"`
}

// Operation names the MFA operation an attempt belongs to.
type Operation string

const (
	OperationConfirm    Operation = "confirm"
	OperationVerify     Operation = "verify"
	OperationDisable    Operation = "disable"
	OperationRegenerate Operation = "regenerate"
)

// Method is the mechanism that accepted the code, if any.
type Method string

const (
	MethodTOTP       Method = "totp"
	MethodBackupCode Method = "backup_code"
	MethodNone       Method = "none"
)

// Outcome of a verification attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// VerificationAttempt is an append-only audit record. It references the
// user by id only and outlives the configuration.
type VerificationAttempt struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Operation  Operation `db:"operation"`
	Method     Method    `db:"method"`
	Outcome    Outcome   `db:"outcome"`
	SourceIP   string    `db:"source_ip"`
	UserAgent  string    `db:"user_agent"`
	OccurredAt time.Time `db:"occurred_at"`
}

// Source identifies where a request came from, for the audit trail.
type Source struct {
	IP        string
	UserAgent string
}

// Status is the read model returned by the status operation.
type Status struct {
	Enabled              bool
	State                State
	Type                 FactorType
	ConfirmedAt          *time.Time
	BackupCodesRemaining int
}

// Enrollment is returned by setup. The secret is shown to the user once.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
	QRCode          string // PNG data URL
	Issuer          string
	Account         string
}
