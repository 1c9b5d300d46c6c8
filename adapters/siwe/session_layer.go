// Package siwe implements the session-management layer: it builds EIP-4361
// sign-in messages, verifies signed messages and issues session tokens.
package siwe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

const (
	// DefaultSessionTTL is the lifetime of a session unless the message expires first
	DefaultSessionTTL = 24 * time.Hour

	minNonceLength = 8
	nonceKeyPrefix = "nonce:"
)

// SessionLayer implements ports.SessionLayer
type SessionLayer struct {
	tokenizer ports.Tokenizer
	store     ports.Store
	eventPub  ports.EventPublisher
	logger    *slog.Logger

	sessionTTL time.Duration
	now        func() time.Time
}

// NewSessionLayer creates a new session layer. eventPub may be nil.
func NewSessionLayer(
	tokenizer ports.Tokenizer,
	store ports.Store,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
	sessionTTL time.Duration,
) *SessionLayer {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionLayer{
		tokenizer:  tokenizer,
		store:      store,
		eventPub:   eventPub,
		logger:     logger,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// GenerateSignInMessage validates cfg and binds it to address
func (l *SessionLayer) GenerateSignInMessage(ctx context.Context, address core.WalletAddress, cfg core.MessageConfig) (*core.SignInMessage, error) {
	if _, err := core.ParseWalletAddress(address.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if cfg.Domain == "" || cfg.URI == "" {
		return nil, fmt.Errorf("%w: domain and uri are required", ErrInvalidMessage)
	}
	if strings.ContainsAny(cfg.Statement, "\r\n") {
		return nil, fmt.Errorf("%w: statement must be a single line", ErrInvalidMessage)
	}
	if cfg.Version != core.MessageVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidMessage, cfg.Version)
	}
	if cfg.ChainID <= 0 {
		return nil, fmt.Errorf("%w: chain id must be positive", ErrInvalidMessage)
	}
	if len(cfg.Nonce) < minNonceLength {
		return nil, fmt.Errorf("%w: nonce must be at least %d characters", ErrInvalidMessage, minNonceLength)
	}
	if !cfg.ExpirationTime.IsZero() && !cfg.NotBefore.IsZero() && !cfg.NotBefore.Before(cfg.ExpirationTime) {
		return nil, fmt.Errorf("%w: not-before must precede expiration", ErrInvalidMessage)
	}

	return core.NewSignInMessage(address, cfg), nil
}

// MaterializeSession verifies the signed message and issues a session token
func (l *SessionLayer) MaterializeSession(ctx context.Context, req core.MaterializeRequest) (core.SessionHandle, error) {
	msg, err := ParseMessage(req.Message)
	if err != nil {
		return core.SessionHandle{}, err
	}

	if !msg.Address.Equal(req.Address) {
		return core.SessionHandle{}, ErrAddressMismatch
	}

	now := l.now()
	if !msg.NotBefore.IsZero() && now.Before(msg.NotBefore) {
		return core.SessionHandle{}, ErrMessageNotYetValid
	}
	if !msg.ExpirationTime.IsZero() && now.After(msg.ExpirationTime) {
		return core.SessionHandle{}, ErrMessageExpired
	}

	if err := VerifySignature(req.Message, req.Signature, msg.Address); err != nil {
		return core.SessionHandle{}, err
	}

	if err := l.consumeNonce(ctx, msg, now); err != nil {
		return core.SessionHandle{}, err
	}

	expiresAt := now.Add(l.sessionTTL)
	if !msg.ExpirationTime.IsZero() && msg.ExpirationTime.Before(expiresAt) {
		expiresAt = msg.ExpirationTime
	}

	handle := core.SessionHandle{
		ID:          uuid.New().String(),
		Address:     msg.Address,
		IssuedAt:    now,
		ExpiresAt:   expiresAt,
		Initialized: true,
	}

	token, err := l.tokenizer.HandleToToken(handle)
	if err != nil {
		return core.SessionHandle{}, fmt.Errorf("failed to create session token: %w", err)
	}
	handle.Token = token

	if l.eventPub != nil {
		if err := l.eventPub.PublishSessionInitialized(ctx, handle); err != nil {
			// The session is valid without the event
			l.logger.WarnContext(ctx, "failed to publish session event", "session_id", handle.ID, "error", err)
		}
	}

	return handle, nil
}

// consumeNonce rejects a signed message that was already exchanged for a session
func (l *SessionLayer) consumeNonce(ctx context.Context, msg *core.SignInMessage, now time.Time) error {
	ttl := l.sessionTTL
	if !msg.ExpirationTime.IsZero() {
		ttl = msg.ExpirationTime.Sub(now)
	}

	claimed, err := l.store.Claim(ctx, nonceKeyPrefix+msg.Nonce, ttl)
	if err != nil {
		return fmt.Errorf("failed to record nonce: %w", err)
	}
	if !claimed {
		return ErrNonceReused
	}

	return nil
}

// Validate parses a session token and checks it has not been revoked
func (l *SessionLayer) Validate(ctx context.Context, token string) (core.SessionHandle, error) {
	handle, err := l.tokenizer.TokenToHandle(token)
	if err != nil {
		return core.SessionHandle{}, err
	}

	revoked, err := l.store.IsRevoked(ctx, handle.ID)
	if err != nil {
		return core.SessionHandle{}, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return core.SessionHandle{}, ErrSessionRevoked
	}

	return handle, nil
}

// Logout revokes a session for the rest of its lifetime. Expired sessions need no revocation.
func (l *SessionLayer) Logout(ctx context.Context, token string) error {
	handle, err := l.tokenizer.TokenToHandle(token)
	if err != nil {
		if errors.Is(err, tokenizer.ErrTokenExpired) {
			return nil
		}
		return err
	}

	if err := l.store.Revoke(ctx, handle.ID, handle.ExpiresAt.Sub(l.now())); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	if l.eventPub != nil {
		if err := l.eventPub.PublishLogout(ctx, handle.Address, handle.ID); err != nil {
			// The session is already revoked in the store, which is the critical part
			l.logger.WarnContext(ctx, "failed to publish logout event", "session_id", handle.ID, "error", err)
		}
	}

	return nil
}
