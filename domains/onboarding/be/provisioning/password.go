package provisioning

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Charset for generated scoped-admin passwords: letters, digits and a fixed
// set of specials.
const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()-_=+"

// GeneratePassword draws length characters from the charset using crypto/rand.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}

	out := make([]byte, length)
	limit := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("draw password char: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}

	return string(out), nil
}
