// Package wallet provides an in-process host wallet backed by a secp256k1 key.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/walletauth/core"
)

// Approver decides whether the user accepts a signature request.
// Returning a non-empty reason rejects the request.
type Approver func(ctx context.Context, req core.SignatureRequest) (approved bool, reason string)

// ApproveAll accepts every request
func ApproveAll(context.Context, core.SignatureRequest) (bool, string) {
	return true, ""
}

// KeyWallet signs with a local private key using EIP-191 personal_sign
type KeyWallet struct {
	key       *ecdsa.PrivateKey
	address   string
	installed atomic.Bool
	approve   Approver
	now       func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time // request nonces already answered, until they expire
}

// NewKeyWallet creates a wallet for key. A nil approver approves everything.
func NewKeyWallet(key *ecdsa.PrivateKey, approve Approver) *KeyWallet {
	if approve == nil {
		approve = ApproveAll
	}
	w := &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		approve: approve,
		now:     time.Now,
		seen:    make(map[string]time.Time),
	}
	w.installed.Store(true)
	return w
}

// NewKeyWalletFromHex parses a hex private key (with or without 0x)
func NewKeyWalletFromHex(hexKey string, approve Approver) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet key: %w", err)
	}
	return NewKeyWallet(key, approve), nil
}

// GenerateKeyWallet creates a wallet with a fresh random key
func GenerateKeyWallet(approve Approver) (*KeyWallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet key: %w", err)
	}
	return NewKeyWallet(key, approve), nil
}

// Address returns the checksummed wallet address
func (w *KeyWallet) Address() string {
	return w.address
}

// SetInstalled toggles whether the wallet reports itself as available
func (w *KeyWallet) SetInstalled(installed bool) {
	w.installed.Store(installed)
}

// IsInstalled reports whether the wallet is available
func (w *KeyWallet) IsInstalled(context.Context) bool {
	return w.installed.Load()
}

// CurrentUser returns the wallet's single account
func (w *KeyWallet) CurrentUser(ctx context.Context) (core.WalletUser, error) {
	if err := ctx.Err(); err != nil {
		return core.WalletUser{}, err
	}
	return core.WalletUser{WalletAddress: w.address}, nil
}

// RequestSignature signs req.Statement after checking the request window and asking the approver.
// Refusals are reported as an error status, not as an error.
func (w *KeyWallet) RequestSignature(ctx context.Context, req core.SignatureRequest) (core.SignatureResponse, error) {
	if err := ctx.Err(); err != nil {
		return core.SignatureResponse{}, err
	}

	now := w.now()
	if !req.NotBefore.IsZero() && now.Before(req.NotBefore) {
		return rejected("signature request is not yet valid"), nil
	}
	if !req.ExpirationTime.IsZero() && now.After(req.ExpirationTime) {
		return rejected("signature request has expired"), nil
	}
	if req.Nonce == "" {
		return rejected("signature request has no nonce"), nil
	}
	if !w.remember(req.Nonce, req.ExpirationTime, now) {
		return rejected("signature request nonce was already used"), nil
	}

	if ok, reason := w.approve(ctx, req); !ok {
		if reason == "" {
			reason = "user rejected the request"
		}
		return rejected(reason), nil
	}

	sig, err := SignText(w.key, req.Statement)
	if err != nil {
		return core.SignatureResponse{}, err
	}

	return core.SignatureResponse{Status: core.SignatureStatusSuccess, Signature: sig}, nil
}

// remember records nonce and reports false when it was seen before
func (w *KeyWallet) remember(nonce string, expiry, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for n, exp := range w.seen {
		if now.After(exp) {
			delete(w.seen, n)
		}
	}

	if _, ok := w.seen[nonce]; ok {
		return false
	}
	if expiry.IsZero() {
		expiry = now.Add(core.MessageValidity)
	}
	w.seen[nonce] = expiry
	return true
}

func rejected(reason string) core.SignatureResponse {
	return core.SignatureResponse{Status: core.SignatureStatusError, Reason: reason}
}

// SignText produces a 65-byte EIP-191 signature over text, hex encoded with V in {27, 28}
func SignText(key *ecdsa.PrivateKey, text string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(text)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
