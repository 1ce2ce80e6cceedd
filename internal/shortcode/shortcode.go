// Package shortcode generates random codes for recipe short links.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// MinLen is the shortest code length tried during allocation.
	MinLen = 6
	// MaxLen is the longest code length tried before giving up.
	MaxLen = 10

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Random returns a random code of the given length drawn from the
// alphanumeric alphabet.
func Random(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random code: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
