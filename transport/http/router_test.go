package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletauth/adapters/siwe"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/adapters/wallet"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFunc func(ctx context.Context, sessions ports.SessionLayer) (*service.AuthSession, error)

func (f authFunc) PerformAuth(ctx context.Context, sessions ports.SessionLayer) (*service.AuthSession, error) {
	return f(ctx, sessions)
}

type testServer struct {
	router   *gin.Engine
	wallet   *wallet.KeyWallet
	sessions *siwe.SessionLayer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	w, err := wallet.GenerateKeyWallet(nil)
	require.NoError(t, err)

	sessions := siwe.NewSessionLayer(tokenizer.NewJWTTokenizer(key, "walletauth"), store.NewMemoryStore(), nil, nil, time.Hour)
	registry := metrics.NewRegistry()
	orchestrator := service.NewOrchestrator(w, nil, service.WithRecorder(metrics.New(registry)))

	return &testServer{
		router:   SetupRouter(orchestrator, sessions, registry),
		wallet:   w,
		sessions: sessions,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type sessionResponse struct {
	Address   string             `json:"address"`
	Signature string             `json:"signature"`
	Message   string             `json:"message"`
	Session   core.SessionHandle `json:"session"`
}

func (s *testServer) signIn(t *testing.T) sessionResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/session", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSession_SignsIn(t *testing.T) {
	s := newTestServer(t)

	resp := s.signIn(t)

	assert.Equal(t, s.wallet.Address(), resp.Address)
	assert.NotEmpty(t, resp.Signature)
	assert.Contains(t, resp.Message, "app.example.com wants you to sign in with your Ethereum account:")
	assert.Contains(t, resp.Message, "URI: https://app.example.com")
	assert.True(t, resp.Session.Initialized)
	assert.NotEmpty(t, resp.Session.Token)
}

func TestSession_WalletUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.wallet.SetInstalled(false)

	req := httptest.NewRequest(http.MethodPost, "/auth/session", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := s.do(req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, core.CodeHostUnavailable, body["code"])
	assert.Equal(t, string(core.StageAddress), body["stage"])
}

func TestSession_BadOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/session", nil)
	req.Header.Set("Origin", "null")
	rec := s.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), core.CodeWrongContext)
}

func TestSession_StatusMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{core.CodeWrongContext, http.StatusBadRequest},
		{core.CodeInvalidAddress, http.StatusBadRequest},
		{core.CodeSigningRejected, http.StatusForbidden},
		{core.CodeSessionInit, http.StatusUnauthorized},
		{core.CodeNoAddress, http.StatusConflict},
		{core.CodeHostUnavailable, http.StatusServiceUnavailable},
		{core.CodeAddressRetrieval, http.StatusBadGateway},
		{core.CodeMessageGeneration, http.StatusBadGateway},
		{core.CodeSigningFailure, http.StatusBadGateway},
		{core.CodeMissingSessionContext, http.StatusInternalServerError},
		{core.CodePipelineFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			auth := authFunc(func(context.Context, ports.SessionLayer) (*service.AuthSession, error) {
				return nil, core.Fail(tt.code, core.StageSigning, "boom")
			})
			router := SetupRouter(auth, nil, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/session", nil))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSession_UnclassifiedErrorIsHidden(t *testing.T) {
	auth := authFunc(func(context.Context, ports.SessionLayer) (*service.AuthSession, error) {
		return nil, errors.New("database password is hunter2")
	})
	router := SetupRouter(auth, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/session", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestSession_ClassifiedErrorHidesCause(t *testing.T) {
	auth := authFunc(func(context.Context, ports.SessionLayer) (*service.AuthSession, error) {
		cause := errors.New("failed to check nonce: dial tcp 10.0.0.7:6379: connection refused")
		return nil, core.Classify(core.CodeSessionInit, core.StageSession, cause, "failed to initialize session")
	})
	router := SetupRouter(auth, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/session", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to initialize session", body["error"])
	assert.Equal(t, core.CodeSessionInit, body["code"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
}

func TestSession_PassesEnvironment(t *testing.T) {
	var got core.Environment
	auth := authFunc(func(ctx context.Context, _ ports.SessionLayer) (*service.AuthSession, error) {
		got, _ = core.EnvironmentFrom(ctx)
		return nil, core.Fail(core.CodeSigningRejected, core.StageSigning, "no")
	})
	router := SetupRouter(auth, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/session", nil)
	req.Host = "wallet.example.com:8443"
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, core.Environment{Domain: "wallet.example.com:8443", URI: "http://wallet.example.com:8443"}, got)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	resp := s.signIn(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Session.Token)
	rec := s.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, resp.Address, body["address"])
	assert.Equal(t, resp.Session.ID, body["session_id"])
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)
		})
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	resp := s.signIn(t)

	body, err := json.Marshal(map[string]string{"token": resp.Session.Token})
	require.NoError(t, err)
	rec := s.do(httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Session.Token)
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)
}

func TestLogout_BadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader([]byte(`{}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader([]byte(`{"token":"nope"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.signIn(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `walletauth_handshakes_total{code="OK"} 1`)
}
