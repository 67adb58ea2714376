// Package otp generates the numeric one-time codes used to prove control of
// an email address during registration.
//
// Codes are derived with HOTP from a per-attempt secret and counter: reissuing
// a code increments the counter, which structurally invalidates the previous
// code without any extra bookkeeping.
package otp
