package siwe

import "errors"

var (
	// ErrInvalidMessage is returned when a sign-in message is malformed or incomplete
	ErrInvalidMessage = errors.New("invalid sign-in message")

	// ErrInvalidSignature is returned when a signature does not recover to the message address
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAddressMismatch is returned when the requested address differs from the signed one
	ErrAddressMismatch = errors.New("address does not match sign-in message")

	// ErrMessageExpired is returned when the message expiration time has passed
	ErrMessageExpired = errors.New("sign-in message has expired")

	// ErrMessageNotYetValid is returned before the message not-before time
	ErrMessageNotYetValid = errors.New("sign-in message is not yet valid")

	// ErrNonceReused is returned when a signed message is presented twice
	ErrNonceReused = errors.New("sign-in message nonce was already used")

	// ErrSessionRevoked is returned when a session has been logged out
	ErrSessionRevoked = errors.New("session has been revoked")
)
