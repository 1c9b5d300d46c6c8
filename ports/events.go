package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// EventPublisher notifies other instances about session lifecycle changes
type EventPublisher interface {
	PublishSessionInitialized(ctx context.Context, handle core.SessionHandle) error
	PublishLogout(ctx context.Context, address core.WalletAddress, sessionID string) error
}
