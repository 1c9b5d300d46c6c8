package service

import (
	"encoding/json"

	"github.com/layer-3/walletauth/core"
)

// AuthSession is the result of a completed handshake. It can only be built by
// SessionInitializer, which guarantees that the address matches the signed
// message and that Message is exactly the text the signature covers.
type AuthSession struct {
	address   core.WalletAddress
	signature core.Signature
	message   string
	handle    core.SessionHandle
}

func newAuthSession(msg *core.SignInMessage, rendered string, sig core.Signature, handle core.SessionHandle) (*AuthSession, error) {
	if rendered != msg.Render() {
		return nil, errRenderedMismatch
	}
	if !handle.Initialized {
		return nil, errSessionNotInitialized
	}
	if handle.Address != "" && !handle.Address.Equal(msg.Address) {
		return nil, errSessionAddressMismatch
	}

	return &AuthSession{
		address:   msg.Address,
		signature: sig,
		message:   rendered,
		handle:    handle,
	}, nil
}

// Address returns the authenticated wallet address
func (s *AuthSession) Address() core.WalletAddress {
	return s.address
}

// Signature returns the wallet signature over Message
func (s *AuthSession) Signature() core.Signature {
	return s.signature
}

// Message returns the rendered sign-in message
func (s *AuthSession) Message() string {
	return s.message
}

// Handle returns the session layer's handle
func (s *AuthSession) Handle() core.SessionHandle {
	return s.handle
}

type authSessionJSON struct {
	Address   core.WalletAddress `json:"address"`
	Signature core.Signature     `json:"signature"`
	Message   string             `json:"message"`
	Session   core.SessionHandle `json:"session"`
}

// MarshalJSON encodes the session for the presentation layer
func (s *AuthSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(authSessionJSON{
		Address:   s.address,
		Signature: s.signature,
		Message:   s.message,
		Session:   s.handle,
	})
}
