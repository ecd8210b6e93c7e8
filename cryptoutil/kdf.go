package cryptoutil

import (
	"crypto/rand"
	"fmt"

	"github.com/slackvfs/svfs/config"
	"golang.org/x/crypto/argon2"
)

// DeriveKey runs Argon2id over password and salt using the fixed
// parameters in config.Argon2Params, returning a 32-byte key.
func DeriveKey(password string, salt []byte) []byte {
	p := config.Argon2Params
	return argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
}

// NewSalt generates a fresh random salt of config.Argon2Params.SaltLen bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, config.Argon2Params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
