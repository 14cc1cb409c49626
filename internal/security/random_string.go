package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString draws length characters uniformly from alphabet using
// crypto/rand. Invite codes and other unguessable tokens come from here.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case len(alphabet) == 0:
		return "", errEmptyAlphabet
	}

	bound := big.NewInt(int64(len(alphabet)))
	result := make([]byte, 0, length)
	for i := 0; i < length; i++ {
		index, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", err
		}
		result = append(result, alphabet[index.Int64()])
	}

	return string(result), nil
}
