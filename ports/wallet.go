package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// HostWallet is the wallet integration that owns the user's account
type HostWallet interface {
	// IsInstalled reports whether the wallet integration is available
	IsInstalled(ctx context.Context) bool

	// CurrentUser returns the account bound to the current user
	CurrentUser(ctx context.Context) (core.WalletUser, error)

	// RequestSignature asks the wallet to sign req.Statement.
	// May block while the user approves or rejects the request.
	RequestSignature(ctx context.Context, req core.SignatureRequest) (core.SignatureResponse, error)
}
