package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// SessionLayer builds sign-in messages and turns signed messages into sessions
type SessionLayer interface {
	GenerateSignInMessage(ctx context.Context, address core.WalletAddress, cfg core.MessageConfig) (*core.SignInMessage, error)
	MaterializeSession(ctx context.Context, req core.MaterializeRequest) (core.SessionHandle, error)
}
