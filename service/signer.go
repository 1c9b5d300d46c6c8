package service

import (
	"context"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// SigningRequestID identifies sign-in requests to the host wallet
const SigningRequestID = "walletauth-sign-in"

// MessageSigner requests signatures over rendered sign-in messages
type MessageSigner struct {
	wallet ports.HostWallet
	nonces *NonceSource
	now    func() time.Time
}

// NewMessageSigner creates a message signer
func NewMessageSigner(wallet ports.HostWallet, nonces *NonceSource) *MessageSigner {
	if nonces == nil {
		nonces = NewNonceSource()
	}
	return &MessageSigner{
		wallet: wallet,
		nonces: nonces,
		now:    time.Now,
	}
}

// Sign asks the host wallet to sign rendered
func (s *MessageSigner) Sign(ctx context.Context, rendered string) (core.Signature, error) {
	// The wallet may have gone away since the address was read
	if s.wallet == nil || !s.wallet.IsInstalled(ctx) {
		return "", core.Fail(core.CodeHostUnavailable, core.StageSigning, "host wallet is not installed")
	}

	now := s.now()
	req := core.SignatureRequest{
		Nonce:          s.nonces.Next(),
		RequestID:      SigningRequestID,
		ExpirationTime: now.Add(core.MessageValidity),
		NotBefore:      now.Add(-core.ClockSkewAllowance),
		Statement:      rendered,
	}

	resp, err := s.wallet.RequestSignature(ctx, req)
	if err != nil {
		return "", core.Classify(core.CodeSigningFailure, core.StageSigning, err, "signature request failed")
	}

	switch resp.Status {
	case core.SignatureStatusSuccess:
		if resp.Signature == "" {
			return "", core.Fail(core.CodeSigningFailure, core.StageSigning, "host wallet returned an empty signature")
		}
		return core.Signature(resp.Signature), nil
	case core.SignatureStatusError:
		if resp.Reason != "" {
			return "", core.Fail(core.CodeSigningRejected, core.StageSigning, "host wallet rejected the signature request: %s", resp.Reason)
		}
		return "", core.Fail(core.CodeSigningRejected, core.StageSigning, "host wallet rejected the signature request")
	default:
		return "", core.Fail(core.CodeSigningFailure, core.StageSigning, "unexpected signature status %q", resp.Status)
	}
}
