// Package randcode draws the random tokens used for invite codes and public
// recipe slugs.
package randcode

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

const (
	byteLength = 16
	// Attempts bounds the uniqueness retries within one call.
	Attempts = 10
)

var ErrExhausted = errors.New("unique code generation exhausted")

// Hex returns 128 random bits as 32 lowercase hex characters.
func Hex() (string, error) {
	var b [byteLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// Unique draws codes until taken reports one as free.
func Unique(ctx context.Context, taken func(context.Context, string) (bool, error)) (string, error) {
	return unique(ctx, Hex, taken)
}

func unique(ctx context.Context, next func() (string, error), taken func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < Attempts; i++ {
		code, err := next()
		if err != nil {
			return "", err
		}
		used, err := taken(ctx, code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
	return "", ErrExhausted
}
