package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDecryptionFailed wraps any authenticated-decryption failure. Encryption
// errors are fatal to the operation that needed them; there is no plaintext
// fallback.
var ErrDecryptionFailed = errors.New("crypto: decryption failed")

// PseudonymRecord is the result of pseudonymizing a value. Re-identification
// is possible only for holders of the mapping.
type PseudonymRecord struct {
	Pseudonym    string `json:"pseudonym"`
	MappingID    string `json:"mapping_id"`
	OriginalHash string `json:"original_hash"`
}

// EncryptionManager provides reversible field-level encryption and
// irreversible hashing/pseudonymization for sensitive fields. When disabled,
// Encrypt and Decrypt pass data through unchanged; callers must check
// Enabled before relying on confidentiality.
type EncryptionManager struct {
	enabled bool
	aead    cipher.AEAD
}

// Options configures the encryption manager.
type Options struct {
	// Enabled turns the cryptographic backend on. When false the manager
	// operates in observable pass-through mode.
	Enabled bool
	// MasterKey is the base64url-encoded 32-byte key. Empty means generate a
	// fresh key at startup; key lifecycle beyond that is external.
	MasterKey string
}

// NewEncryptionManager creates an encryption manager keyed by the
// process-wide master key.
func NewEncryptionManager(opts Options) (*EncryptionManager, error) {
	if !opts.Enabled {
		return &EncryptionManager{enabled: false}, nil
	}

	var key []byte
	if opts.MasterKey == "" {
		key = make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("crypto: generate master key: %w", err)
		}
	} else {
		decoded, err := base64.URLEncoding.DecodeString(opts.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("crypto: decode master key: %w", err)
		}
		if len(decoded) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("crypto: master key must be %d bytes, got %d", chacha20poly1305.KeySize, len(decoded))
		}
		key = decoded
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: init cipher: %w", err)
	}
	return &EncryptionManager{enabled: true, aead: aead}, nil
}

// Enabled reports whether a cryptographic backend is configured. False means
// Encrypt and Decrypt are pass-throughs.
func (m *EncryptionManager) Enabled() bool {
	return m.enabled
}

// Encrypt seals plaintext with the master key and returns a base64url
// ciphertext (nonce prepended).
func (m *EncryptionManager) Encrypt(plaintext string) (string, error) {
	if !m.enabled {
		return plaintext, nil
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or mis-keyed ciphertexts fail with
// ErrDecryptionFailed.
func (m *EncryptionManager) Decrypt(ciphertext string) (string, error) {
	if !m.enabled {
		return ciphertext, nil
	}

	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := m.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// HashPII produces an irreversible SHA-256 hex digest of a PII value for
// anonymization. The optional salt is appended before hashing.
func (m *EncryptionManager) HashPII(value, salt string) string {
	sum := sha256.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])
}

// Pseudonymize derives a 16-hex-char pseudonym from the value and mapping id,
// so holders of the mapping can consistently re-identify the subject.
func (m *EncryptionManager) Pseudonymize(value, mappingID string) PseudonymRecord {
	sum := sha256.Sum256([]byte(value + mappingID))
	return PseudonymRecord{
		Pseudonym:    hex.EncodeToString(sum[:])[:16],
		MappingID:    mappingID,
		OriginalHash: m.HashPII(value, ""),
	}
}
