package profile

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"jobsonar/pkg/utils"
)

const keySize = 32
const nonceSize = 24

// Cipher encrypts and decrypts profile text with NaCl secretbox. The key
// is a base64-encoded 32-byte secret; the nonce is random per message and
// prepended to the ciphertext.
type Cipher struct {
	key [keySize]byte
}

// NewCipher creates a cipher from a base64-encoded key
func NewCipher(encodedKey string) (*Cipher, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key encoding: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(raw))
	}

	c := &Cipher{}
	copy(c.key[:], raw)
	return c, nil
}

// GenerateKey returns a fresh base64-encoded encryption key
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext into nonce||ciphertext
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key), nil
}

// Decrypt opens nonce||ciphertext. A wrong key or corrupted data returns
// ErrProfileDecrypt so the caller can ask for a re-upload.
func (c *Cipher) Decrypt(data []byte) (string, error) {
	if len(data) < nonceSize {
		return "", utils.ErrProfileDecrypt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])

	plaintext, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", utils.ErrProfileDecrypt
	}
	return string(plaintext), nil
}
