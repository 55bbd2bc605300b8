package model

import "errors"

// ErrNotFound is returned by stores when the requested entry is absent.
var ErrNotFound = errors.New("not found")

// Login attempt failures. All of them are terminal for the attempt.
var (
	ErrConsentMissing     = errors.New("user agreement not accepted")
	ErrLoginInFlight      = errors.New("login attempt already in flight")
	ErrPhoneGrantMissing  = errors.New("phone number grant not provided")
	ErrPlatformCodeDenied = errors.New("platform login code denied")
	ErrExchangeRejected   = errors.New("session exchange rejected")
)

// Verification code failures.
var (
	ErrInvalidPhone   = errors.New("invalid phone number")
	ErrCooldownActive = errors.New("verification code cooldown active")
)
