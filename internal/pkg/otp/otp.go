package otp

import (
	"crypto/rand"
	"encoding/base32"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// OTP defines the contract for email verification code operations.
type OTP interface {
	// NewSecret creates a per-attempt secret.
	NewSecret() (string, error)
	// Code derives the fixed-width numeric code for the secret at a counter.
	Code(secret string, counter uint64) (string, error)
}

// EmailCode implements OTP using the HMAC-based One-Time Password algorithm.
//
// Each verification attempt owns a random secret; every (re)issue bumps the
// attempt's counter, so the previous code can never validate again. The code
// is a zero-padded numeric string of fixed width compared verbatim.
type EmailCode struct {
	digits otp.Digits
}

// NewEmailCode constructs an EmailCode generator.
//
// If digits is not 6 or 8, it falls back to 6 digits.
func NewEmailCode(digits otp.Digits) *EmailCode {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	return &EmailCode{digits: digits}
}

// NewSecret creates a random base32 secret.
func (o *EmailCode) NewSecret() (string, error) {
	var raw [20]byte // RFC 4226 recommendation
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:]), nil
}

// Code derives the code for the secret at the given counter.
func (o *EmailCode) Code(secret string, counter uint64) (string, error) {
	return hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}
