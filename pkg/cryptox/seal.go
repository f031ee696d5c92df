package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// sealPrefix versions the sealed format so a future key rotation can
// tell generations apart.
const sealPrefix = "v1:"

// ErrSealedData is returned when sealed data is malformed or fails authentication.
var ErrSealedData = errors.New("cryptox: sealed data invalid")

// Sealer encrypts short secrets at rest with AES-256-GCM.
// The sealed form is "v1:" + base64([12-byte nonce][ciphertext][16-byte tag]).
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 32-byte key from keyMaterial with SHA-256.
func NewSealer(keyMaterial []byte) (*Sealer, error) {
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: empty master key")
	}
	key := sha256.Sum256(keyMaterial)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// LoadMasterKey reads key material from path. An empty path yields an
// ephemeral random key and ephemeral=true; secrets sealed with it do not
// survive a restart.
func LoadMasterKey(path string) (key []byte, ephemeral bool, err error) {
	if path == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
		}
		return key, true, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("cryptox: read master key: %w", err)
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, false, fmt.Errorf("cryptox: master key file %s is empty", path)
	}
	return data, false, nil
}

// Seal encrypts plaintext with a random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	enc, ok := strings.CutPrefix(sealed, sealPrefix)
	if !ok {
		return "", fmt.Errorf("%w: unknown format", ErrSealedData)
	}
	data, err := base64.RawStdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedData, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrSealedData)
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedData, err)
	}
	return string(plaintext), nil
}
