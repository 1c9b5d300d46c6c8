package service

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

const (
	// DefaultStatement is the human-readable intent shown to the user in the wallet
	DefaultStatement = "Sign in with your wallet to authenticate this session."

	// DefaultChainID pins sign-in messages to Ethereum mainnet
	DefaultChainID int64 = 1
)

// MessageFactory asks the session layer for sign-in messages bound to an address and origin
type MessageFactory struct {
	statement string
	chainID   int64
	nonces    *NonceSource
	now       func() time.Time
}

// NewMessageFactory creates a message factory
func NewMessageFactory(statement string, chainID int64, nonces *NonceSource) *MessageFactory {
	if statement == "" {
		statement = DefaultStatement
	}
	if chainID == 0 {
		chainID = DefaultChainID
	}
	if nonces == nil {
		nonces = NewNonceSource()
	}
	return &MessageFactory{
		statement: statement,
		chainID:   chainID,
		nonces:    nonces,
		now:       time.Now,
	}
}

// Generate builds a sign-in message for address.
// Preconditions are checked in order: session layer present, address well formed,
// execution context carries origin information.
func (f *MessageFactory) Generate(ctx context.Context, sessions ports.SessionLayer, address core.WalletAddress) (*core.SignInMessage, error) {
	if sessions == nil {
		return nil, core.Fail(core.CodeMissingSessionContext, core.StageMessage, "session context is required")
	}

	addr, err := core.ParseWalletAddress(address.String())
	if err != nil {
		return nil, core.Classify(core.CodeInvalidAddress, core.StageMessage, err, fmt.Sprintf("invalid wallet address %q", address))
	}

	env, ok := core.EnvironmentFrom(ctx)
	if !ok {
		return nil, core.Fail(core.CodeWrongContext, core.StageMessage, "sign-in message requires an origin")
	}

	cfg := core.NewMessageConfig(env, f.statement, f.chainID, f.nonces.Next(), f.now())

	msg, err := sessions.GenerateSignInMessage(ctx, addr, cfg)
	if err != nil {
		return nil, core.Classify(core.CodeMessageGeneration, core.StageMessage, err, "failed to generate sign-in message")
	}
	if msg == nil {
		return nil, core.Fail(core.CodeMessageGeneration, core.StageMessage, "session layer returned no sign-in message")
	}

	return msg, nil
}
