package service

import (
	"context"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/layer-3/walletauth/core"
)

const testAddress = "0xAbC123000000000000000000000000000000dEaD"

var testEnv = core.Environment{Domain: "app.example.com", URI: "https://app.example.com"}

func envContext() context.Context {
	return core.WithEnvironment(context.Background(), testEnv)
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) IsInstalled(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockWallet) CurrentUser(ctx context.Context) (core.WalletUser, error) {
	args := m.Called(ctx)
	return args.Get(0).(core.WalletUser), args.Error(1)
}

func (m *mockWallet) RequestSignature(ctx context.Context, req core.SignatureRequest) (core.SignatureResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(core.SignatureResponse), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) GenerateSignInMessage(ctx context.Context, address core.WalletAddress, cfg core.MessageConfig) (*core.SignInMessage, error) {
	args := m.Called(ctx, address, cfg)
	msg, _ := args.Get(0).(*core.SignInMessage)
	return msg, args.Error(1)
}

func (m *mockSessions) MaterializeSession(ctx context.Context, req core.MaterializeRequest) (core.SessionHandle, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(core.SessionHandle), args.Error(1)
}

// echoSessions builds messages straight from the config and counts calls
type echoSessions struct {
	generated   atomic.Int64
	materialize func(req core.MaterializeRequest) (core.SessionHandle, error)
}

func (e *echoSessions) GenerateSignInMessage(_ context.Context, address core.WalletAddress, cfg core.MessageConfig) (*core.SignInMessage, error) {
	e.generated.Add(1)
	return core.NewSignInMessage(address, cfg), nil
}

func (e *echoSessions) MaterializeSession(_ context.Context, req core.MaterializeRequest) (core.SessionHandle, error) {
	if e.materialize != nil {
		return e.materialize(req)
	}
	return core.SessionHandle{ID: "session-1", Address: req.Address, Initialized: true}, nil
}
