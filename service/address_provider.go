package service

import (
	"context"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// AddressProvider reads the active account from the host wallet
type AddressProvider struct {
	wallet ports.HostWallet
}

// NewAddressProvider creates a new address provider
func NewAddressProvider(wallet ports.HostWallet) *AddressProvider {
	return &AddressProvider{wallet: wallet}
}

// WalletAddress returns the address bound to the current wallet user.
// The address is passed through as reported; format checks happen when the
// sign-in message is generated.
func (p *AddressProvider) WalletAddress(ctx context.Context) (core.WalletAddress, error) {
	if p.wallet == nil || !p.wallet.IsInstalled(ctx) {
		return "", core.Fail(core.CodeHostUnavailable, core.StageAddress, "host wallet is not installed")
	}

	user, err := p.wallet.CurrentUser(ctx)
	if err != nil {
		return "", core.Classify(core.CodeAddressRetrieval, core.StageAddress, err, "failed to get wallet address")
	}

	if user.WalletAddress == "" {
		return "", core.Fail(core.CodeNoAddress, core.StageAddress, "no wallet address is bound to the current user")
	}

	return core.WalletAddress(user.WalletAddress), nil
}
