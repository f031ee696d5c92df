package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// SecretLength is the size in bytes of a generated TOTP shared secret (160 bits).
	SecretLength = 20

	// BackupCodeLength is the number of symbols in a backup code, excluding the separator.
	BackupCodeLength = 10

	// backupCodeAlphabet omits 0/O and 1/I so codes survive being read aloud or handwritten.
	backupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCollisionRetries bounds regeneration of a duplicate code within a batch.
	maxCollisionRetries = 16
)

var (
	// ErrEntropyUnavailable is returned when the random source fails.
	ErrEntropyUnavailable = errors.New("cryptox: entropy source unavailable")

	// ErrInvalidCount is returned for a non-positive backup code batch size.
	ErrInvalidCount = errors.New("cryptox: backup code count must be positive")
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generator produces TOTP secrets and backup codes. The zero value reads from crypto/rand.
type Generator struct {
	// Rand overrides the randomness source. Tests use it to inject failures.
	Rand io.Reader
}

func (g Generator) reader() io.Reader {
	if g.Rand != nil {
		return g.Rand
	}
	return rand.Reader
}

// GenerateSecret returns a fresh 160-bit secret encoded as unpadded base32.
func (g Generator) GenerateSecret() (string, error) {
	buf := make([]byte, SecretLength)
	if _, err := io.ReadFull(g.reader(), buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return secretEncoding.EncodeToString(buf), nil
}

// GenerateBackupCodes returns count distinct backup codes formatted as XXXXX-XXXXX.
func (g Generator) GenerateBackupCodes(count int) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	seen := make(map[string]struct{}, count)
	codes := make([]string, 0, count)
	for len(codes) < count {
		var code string
		for attempt := 0; ; attempt++ {
			if attempt == maxCollisionRetries {
				return nil, fmt.Errorf("%w: repeated backup code collisions", ErrEntropyUnavailable)
			}
			c, err := g.backupCode()
			if err != nil {
				return nil, err
			}
			if _, dup := seen[c]; !dup {
				code = c
				break
			}
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// backupCode draws one code. The alphabet has 32 symbols so the low five
// bits of each byte index it without modulo bias.
func (g Generator) backupCode() (string, error) {
	buf := make([]byte, BackupCodeLength)
	if _, err := io.ReadFull(g.reader(), buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}

	var sb strings.Builder
	sb.Grow(BackupCodeLength + 1)
	for i, b := range buf {
		if i == BackupCodeLength/2 {
			sb.WriteByte('-')
		}
		sb.WriteByte(backupCodeAlphabet[b&0x1f])
	}
	return sb.String(), nil
}

// NormalizeBackupCode upper-cases a user supplied code and strips grouping
// characters, so "abcde fghjk" and "ABCDE-FGHJK" hash identically.
func NormalizeBackupCode(code string) string {
	var sb strings.Builder
	sb.Grow(len(code))
	for _, r := range strings.ToUpper(code) {
		switch r {
		case '-', ' ', '\t':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// LooksLikeBackupCode reports whether a normalized code has the shape of a
// backup code. Used to skip the slow hash comparisons for obvious garbage.
func LooksLikeBackupCode(normalized string) bool {
	if len(normalized) != BackupCodeLength {
		return false
	}
	for i := 0; i < len(normalized); i++ {
		if !strings.ContainsRune(backupCodeAlphabet, rune(normalized[i])) {
			return false
		}
	}
	return true
}
