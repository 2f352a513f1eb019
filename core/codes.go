package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeLength   = 6

	defaultCodeMaxAttempts = 5
)

// GenerateCode returns a 6-char lowercase alphanumeric identifier. The 36^6
// space makes collisions rare enough that retry-on-unique-violation is the
// only collision handling required.
func GenerateCode() (string, error) {
	out := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("core: generate code: %w", err)
		}
		out[i] = codeAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// generateWithRetry draws codes until taken reports a free one, bounded by
// maxAttempts before surfacing ErrCodeSpaceExhausted.
func generateWithRetry(maxAttempts int, taken func(code string) (bool, error)) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = defaultCodeMaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		inUse, err := taken(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: no free code after %d attempts", ErrCodeSpaceExhausted, maxAttempts)
}

func generateOAuthState() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("core: generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
