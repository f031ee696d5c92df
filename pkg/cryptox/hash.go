package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Default Argon2id parameters.
const (
	DefaultMemory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	DefaultIterations  = 2
	DefaultParallelism = 1
	keyLength          = 32
	saltLength         = 16
)

var (
	// ErrHashMismatch is returned by Verify when the secret does not match.
	ErrHashMismatch = errors.New("cryptox: hash does not match")

	// ErrInvalidHash is returned when an encoded hash cannot be parsed.
	ErrInvalidHash = errors.New("cryptox: invalid hash format")
)

// Hasher produces and verifies PHC-format Argon2id hashes. Every input is
// combined with Pepper before hashing.
type Hasher struct {
	Pepper      string
	Memory      uint32
	Iterations  uint32
	Parallelism uint8

	// Rand is the salt source. Nil means crypto/rand.
	Rand io.Reader
}

// NewHasher returns a Hasher using the default cost parameters.
func NewHasher(pepper string) *Hasher {
	return &Hasher{
		Pepper:      pepper,
		Memory:      DefaultMemory,
		Iterations:  DefaultIterations,
		Parallelism: DefaultParallelism,
	}
}

// Hash returns "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash" with a fresh random salt.
func (h *Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(h.reader(), salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	sum := argon2.IDKey([]byte(secret+h.Pepper), salt, h.Iterations, h.Memory, h.Parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		h.Memory,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

func (h *Hasher) reader() io.Reader {
	if h.Rand != nil {
		return h.Rand
	}
	return rand.Reader
}

// Verify compares secret against an encoded hash in constant time. The cost
// parameters are taken from the encoded hash, not from h.
func (h *Hasher) Verify(secret, encoded string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return fmt.Errorf("%w: expected 6 parts", ErrInvalidHash)
	}
	if parts[1] != "argon2id" {
		return fmt.Errorf("%w: not argon2id", ErrInvalidHash)
	}
	if parts[2] != "v=19" {
		return fmt.Errorf("%w: wrong version", ErrInvalidHash)
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: parameters: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: hash: %v", ErrInvalidHash, err)
	}

	computed := argon2.IDKey(
		[]byte(secret+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrHashMismatch
}
