package otp

import (
	"testing"

	libOTP "github.com/pquerna/otp"
)

func TestEmailCodeFixedWidth(t *testing.T) {
	gen := NewEmailCode(libOTP.DigitsSix)

	secret, err := gen.NewSecret()
	if err != nil {
		t.Fatalf("new secret: %v", err)
	}

	for counter := uint64(0); counter < 50; counter++ {
		code, err := gen.Code(secret, counter)
		if err != nil {
			t.Fatalf("code at counter %d: %v", counter, err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q at counter %d is not 6 digits", code, counter)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
	}
}

func TestEmailCodeDeterministicPerCounter(t *testing.T) {
	gen := NewEmailCode(libOTP.DigitsSix)

	secret, err := gen.NewSecret()
	if err != nil {
		t.Fatalf("new secret: %v", err)
	}

	first, err := gen.Code(secret, 1)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	again, err := gen.Code(secret, 1)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	if first != again {
		t.Fatalf("same counter produced different codes: %q vs %q", first, again)
	}
}

func TestEmailCodeCounterBumpInvalidatesPrevious(t *testing.T) {
	gen := NewEmailCode(libOTP.DigitsSix)

	secret, err := gen.NewSecret()
	if err != nil {
		t.Fatalf("new secret: %v", err)
	}

	// With 6-digit codes a collision between consecutive counters is
	// possible but astronomically unlikely across 20 counters in a row.
	distinct := false
	prev, err := gen.Code(secret, 0)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	for counter := uint64(1); counter <= 20; counter++ {
		next, err := gen.Code(secret, counter)
		if err != nil {
			t.Fatalf("code: %v", err)
		}
		if next != prev {
			distinct = true
		}
		prev = next
	}
	if !distinct {
		t.Fatal("codes never changed across counters")
	}
}

func TestNewEmailCodeFallsBackToSixDigits(t *testing.T) {
	gen := NewEmailCode(libOTP.Digits(42))

	secret, err := gen.NewSecret()
	if err != nil {
		t.Fatalf("new secret: %v", err)
	}

	code, err := gen.Code(secret, 0)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit fallback, got %q", code)
	}
}
