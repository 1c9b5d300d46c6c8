package service

import (
	"context"
	"errors"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// SessionInitializer turns a signed sign-in message into an AuthSession
type SessionInitializer struct{}

// NewSessionInitializer creates a session initializer
func NewSessionInitializer() *SessionInitializer {
	return &SessionInitializer{}
}

// Initialize materializes a session for msg signed with sig. Failures are never retried.
func (i *SessionInitializer) Initialize(ctx context.Context, sessions ports.SessionLayer, msg *core.SignInMessage, sig core.Signature) (*AuthSession, error) {
	if sessions == nil {
		return nil, core.Fail(core.CodeSessionInit, core.StageSession, "session context is required")
	}
	if msg == nil {
		return nil, core.Fail(core.CodeSessionInit, core.StageSession, "sign-in message is required")
	}

	rendered := msg.Render()

	handle, err := sessions.MaterializeSession(ctx, core.MaterializeRequest{
		Address:   msg.Address,
		Message:   rendered,
		Signature: sig,
	})
	if err != nil {
		return nil, core.Classify(core.CodeSessionInit, core.StageSession, err, "failed to initialize session")
	}

	session, err := newAuthSession(msg, rendered, sig, handle)
	if err != nil {
		return nil, core.Classify(core.CodeSessionInit, core.StageSession, err, "session layer returned an unusable session")
	}

	return session, nil
}

var (
	errSessionNotInitialized  = errors.New("session handle is not initialized")
	errSessionAddressMismatch = errors.New("session handle address does not match the signed message")
	errRenderedMismatch       = errors.New("rendered message does not match the sign-in message")
)
