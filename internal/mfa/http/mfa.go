package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/service"
	"github.com/aussiebroadwan/mfa/pkg/httpx"
	"github.com/aussiebroadwan/mfa/pkg/mfasdk"
	"github.com/aussiebroadwan/mfa/pkg/slogx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleSetup handles POST /v1/mfa/setup
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a new shared secret and returns it with a provisioning URI and QR code.
//	@Description	Calling it again restarts enrollment. While MFA is enabled the current secret keeps working until the new one is confirmed.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.SetupRequest		false	"Factor type (defaults to totp)"
//	@Success		200		{object}	mfasdk.SetupResponse	"Secret, provisioning URI and QR code (shown once)"
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Unsupported factor or malformed request"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500		{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/mfa/setup [post].
func (h *MFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		mfasdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req mfasdk.SetupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	account := userID
	if claims, ok := httpx.ClaimsFromContext(ctx); ok {
		account = claims.AccountLabel()
	}

	enr, err := h.MFAService.Setup(ctx, userID, account, domain.FactorType(strings.ToLower(req.Type)))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.SetupResponse{
		Secret:          enr.Secret,
		ProvisioningURI: enr.ProvisioningURI,
		QRCode:          enr.QRCode,
		Issuer:          enr.Issuer,
		Account:         enr.Account,
	})
}

// HandleEnable handles POST /v1/mfa/enable
//
//	@Summary		Confirm enrollment and enable MFA
//	@Description	Verifies a TOTP code against the pending secret, enables MFA and returns a new batch of backup codes.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.CodeRequest			true	"TOTP code"
//	@Success		200		{object}	mfasdk.BackupCodesResponse	"Backup codes (shown once)"
//	@Failure		400		{object}	mfasdk.ErrorResponse		"Invalid code or request"
//	@Failure		401		{object}	mfasdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		409		{object}	mfasdk.ErrorResponse		"No enrollment awaiting confirmation"
//	@Failure		429		{object}	mfasdk.ErrorResponse		"Rate limit exceeded"
//	@Failure		500		{object}	mfasdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/enable [post].
func (h *MFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, code, ok := readCodeRequest(w, r)
	if !ok {
		return
	}

	codes, err := h.MFAService.Enable(ctx, userID, code, sourceOf(r))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.BackupCodesResponse{Codes: codes})
}

// HandleVerify handles POST /v1/mfa/verify
//
//	@Summary		Verify a TOTP or backup code
//	@Description	Checks a TOTP code, falling back to a single-use backup code. Every call is recorded in the verification ledger.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.CodeRequest		true	"TOTP or backup code"
//	@Success		200		{object}	mfasdk.VerifyResponse	"Code accepted"
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Invalid code or request"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	mfasdk.ErrorResponse	"MFA is not enabled"
//	@Failure		429		{object}	mfasdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500		{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, code, ok := readCodeRequest(w, r)
	if !ok {
		return
	}

	verified, err := h.MFAService.Verify(ctx, userID, code, sourceOf(r))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if !verified {
		mfasdk.ErrInvalidCode.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.VerifyResponse{Verified: true})
}

// HandleDisable handles POST /v1/mfa/disable
//
//	@Summary		Disable MFA
//	@Description	Verifies a TOTP or backup code, then removes the secret and all backup codes.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.CodeRequest		true	"TOTP or backup code"
//	@Success		200		{object}	mfasdk.MessageResponse	"MFA disabled"
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Invalid code or request"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	mfasdk.ErrorResponse	"MFA is not enabled"
//	@Failure		429		{object}	mfasdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500		{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, code, ok := readCodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.MFAService.Disable(ctx, userID, code, sourceOf(r)); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.MessageResponse{Message: "MFA disabled"})
}

// HandleRegenerateBackupCodes handles POST /v1/mfa/backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Verifies a TOTP or backup code and replaces all backup codes with a new batch.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfasdk.CodeRequest			true	"TOTP or backup code"
//	@Success		200		{object}	mfasdk.BackupCodesResponse	"New backup codes (shown once)"
//	@Failure		400		{object}	mfasdk.ErrorResponse		"Invalid code or request"
//	@Failure		401		{object}	mfasdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		409		{object}	mfasdk.ErrorResponse		"MFA is not enabled"
//	@Failure		429		{object}	mfasdk.ErrorResponse		"Rate limit exceeded"
//	@Failure		500		{object}	mfasdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/backup-codes [post].
func (h *MFAHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, code, ok := readCodeRequest(w, r)
	if !ok {
		return
	}

	codes, err := h.MFAService.RegenerateBackupCodes(ctx, userID, code, sourceOf(r))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.BackupCodesResponse{Codes: codes})
}

// HandleStatus handles GET /v1/mfa/status
//
//	@Summary		MFA status
//	@Description	Returns the caller's MFA state. Has no side effects.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	mfasdk.StatusResponse	"Current state"
//	@Failure		401	{object}	mfasdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/mfa/status [get].
func (h *MFAHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		mfasdk.ErrInvalidToken.WriteError(w)
		return
	}

	st, err := h.MFAService.Status(ctx, userID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.StatusResponse{
		Enabled:              st.Enabled,
		State:                string(st.State),
		Type:                 string(st.Type),
		ConfirmedAt:          st.ConfirmedAt,
		BackupCodesRemaining: st.BackupCodesRemaining,
	})
}

// HandleAttempts handles GET /v1/mfa/attempts
//
//	@Summary		Recent verification attempts
//	@Description	Lists the caller's most recent verification attempts, newest first.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int						false	"Maximum entries (default 50, max 200)"
//	@Success		200		{object}	mfasdk.AttemptsResponse	"Attempts"
//	@Failure		400		{object}	mfasdk.ErrorResponse	"Malformed limit"
//	@Failure		401		{object}	mfasdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500		{object}	mfasdk.ErrorResponse	"Internal server error"
//	@Router			/v1/mfa/attempts [get].
func (h *MFAHandler) HandleAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		mfasdk.ErrInvalidToken.WriteError(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			mfasdk.ErrInvalidRequest.WriteError(w)
			return
		}
		limit = n
	}

	attempts, err := h.MFAService.Attempts(ctx, userID, limit)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	out := make([]mfasdk.Attempt, len(attempts))
	for i, a := range attempts {
		out[i] = mfasdk.Attempt{
			ID:         a.ID,
			Operation:  string(a.Operation),
			Method:     string(a.Method),
			Outcome:    string(a.Outcome),
			SourceIP:   a.SourceIP,
			UserAgent:  a.UserAgent,
			OccurredAt: a.OccurredAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, mfasdk.AttemptsResponse{Attempts: out})
}

// readCodeRequest extracts the caller and a non-empty code, writing the
// error response itself when either is missing.
func readCodeRequest(w http.ResponseWriter, r *http.Request) (userID, code string, ok bool) {
	userID, ok = httpx.UserIDFromContext(r.Context())
	if !ok {
		mfasdk.ErrInvalidToken.WriteError(w)
		return "", "", false
	}

	var req mfasdk.CodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		mfasdk.ErrInvalidRequest.WriteError(w)
		return "", "", false
	}
	code = strings.TrimSpace(req.Code)
	if code == "" {
		mfasdk.ErrInvalidRequest.WriteError(w)
		return "", "", false
	}
	return userID, code, true
}

func sourceOf(r *http.Request) domain.Source {
	return domain.Source{IP: httpx.ClientIP(r), UserAgent: r.UserAgent()}
}

// writeServiceError maps service errors onto the error envelope. Anything
// unexpected is logged and reported as a server error.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCodeMismatch):
		mfasdk.ErrInvalidCode.WriteError(w)
	case errors.Is(err, service.ErrInvalidStateTransition):
		mfasdk.ErrInvalidState.WriteError(w)
	case errors.Is(err, service.ErrUnsupportedFactor):
		mfasdk.ErrUnsupportedFactor.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("mfa operation failed", "err", err)
		mfasdk.ErrServerError.WriteError(w)
	}
}
