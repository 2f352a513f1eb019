package core

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateCode_FormatAndCharset(t *testing.T) {
	code, err := GenerateCode()
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if len(code) != codeLength {
		t.Fatalf("expected %d chars, got %q", codeLength, code)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("unexpected character %q in code %q", r, code)
		}
	}
}

func TestGenerateWithRetry_SequentialUniqueness(t *testing.T) {
	const draws = 10000
	taken := make(map[string]struct{}, draws)
	for i := 0; i < draws; i++ {
		code, err := generateWithRetry(defaultCodeMaxAttempts, func(candidate string) (bool, error) {
			_, exists := taken[candidate]
			return exists, nil
		})
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if len(code) != codeLength {
			t.Fatalf("draw %d: expected %d chars, got %q", i, codeLength, code)
		}
		if _, exists := taken[code]; exists {
			t.Fatalf("draw %d: duplicate code %q", i, code)
		}
		taken[code] = struct{}{}
	}
	if len(taken) != draws {
		t.Fatalf("expected %d distinct codes, got %d", draws, len(taken))
	}
}

func TestGenerateWithRetry_SkipsTakenCodes(t *testing.T) {
	calls := 0
	code, err := generateWithRetry(5, func(string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	if err != nil {
		t.Fatalf("generate with retry: %v", err)
	}
	if code == "" {
		t.Fatalf("expected a code after retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGenerateWithRetry_Exhaustion(t *testing.T) {
	_, err := generateWithRetry(4, func(string) (bool, error) {
		return true, nil
	})
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("expected code space exhaustion, got %v", err)
	}
}

func TestGenerateOAuthState_Unique(t *testing.T) {
	first, err := generateOAuthState()
	if err != nil {
		t.Fatalf("generate state: %v", err)
	}
	second, err := generateOAuthState()
	if err != nil {
		t.Fatalf("generate state: %v", err)
	}
	if first == "" || first == second {
		t.Fatalf("expected distinct non-empty states, got %q and %q", first, second)
	}
}
