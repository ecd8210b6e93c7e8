// Package cryptoutil implements the authenticated-encryption layer: every
// hidden file and the superblock itself pass through here before the
// erasure codec ever sees them. AES-256-GCM in both password-derived and
// direct-key modes, with Argon2id as the password KDF.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/slackvfs/svfs/vfserrors"
)

const nonceSize = 12

// Envelope is the result of password-mode encryption: the salt the key
// was derived from, plus the nonce||ciphertext||tag blob.
type Envelope struct {
	Salt    []byte
	Payload []byte
}

// EncryptData derives a fresh key from password and a new random salt,
// then authenticate-encrypts plaintext under it.
func EncryptData(plaintext []byte, password string) (Envelope, error) {
	salt, err := NewSalt()
	if err != nil {
		return Envelope{}, err
	}
	key := DeriveKey(password, salt)
	payload, err := EncryptWithKey(plaintext, key)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Salt: salt, Payload: payload}, nil
}

// DecryptData derives the key from password and the envelope's stored
// salt, then decrypts and authenticates the payload.
func DecryptData(env Envelope, password string) ([]byte, error) {
	key := DeriveKey(password, env.Salt)
	return DecryptWithKey(env.Payload, key)
}

// EncryptWithKey authenticate-encrypts plaintext under a 32-byte key
// already in hand, returning nonce(12) || ciphertext || tag(16).
func EncryptWithKey(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vfserrors.ErrEncryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vfserrors.ErrEncryption, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: generate nonce: %v", vfserrors.ErrEncryption, err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// DecryptWithKey verifies and decrypts a nonce||ciphertext||tag blob
// under a 32-byte key already in hand. A wrong key or tampered bytes
// both fail as ErrDecryption, indistinguishably.
func DecryptWithKey(blob []byte, key []byte) ([]byte, error) {
	if len(blob) < nonceSize {
		return nil, vfserrors.ErrDecryption
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vfserrors.ErrEncryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vfserrors.ErrEncryption, err)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, vfserrors.ErrDecryption
	}
	return plaintext, nil
}
