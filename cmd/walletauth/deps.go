package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletauth/adapters/events"
	"github.com/layer-3/walletauth/adapters/siwe"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/adapters/wallet"
	"github.com/layer-3/walletauth/internal/config"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
)

// deps is the wired object graph shared by the commands
type deps struct {
	wallet       *wallet.KeyWallet
	sessions     *siwe.SessionLayer
	orchestrator *service.Orchestrator
	registry     *prometheus.Registry
	closers      []func() error
}

func (d *deps) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func buildDeps(ctx context.Context, cfg config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{}

	hostWallet, err := loadWallet(cfg.WalletPrivateKey)
	if err != nil {
		return nil, err
	}
	d.wallet = hostWallet

	signKey, err := loadSigningKey(cfg.JWTKeyFile)
	if err != nil {
		return nil, err
	}

	wmLogger := watermill.NewSlogLogger(logger)

	var (
		revocations ports.Store
		publisher   message.Publisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		d.closers = append(d.closers, redisClient.Close)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("failed to reach Redis: %w", err)
		}

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("failed to create Redis publisher: %w", err)
		}
		revocations = store.NewRedisStore(redisClient)
	} else {
		logger.Warn("no Redis configured, using in-memory store and event bus")
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		revocations = store.NewMemoryStore()
	}
	d.closers = append(d.closers, publisher.Close)

	d.sessions = siwe.NewSessionLayer(
		tokenizer.NewJWTTokenizer(signKey, cfg.JWTIssuer),
		revocations,
		events.NewWatermillPublisher(publisher),
		logger,
		cfg.SessionTTL,
	)

	d.registry = metrics.NewRegistry()
	d.orchestrator = service.NewOrchestrator(hostWallet, logger,
		service.WithStatement(cfg.Statement),
		service.WithChainID(cfg.ChainID),
		service.WithRecorder(metrics.New(d.registry)),
	)

	return d, nil
}

func loadWallet(hexKey string) (*wallet.KeyWallet, error) {
	if hexKey == "" {
		return wallet.GenerateKeyWallet(nil)
	}
	return wallet.NewKeyWalletFromHex(hexKey, nil)
}

// loadSigningKey reads a PEM encoded P-256 key, or generates one when path is empty
func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		return key, nil
	}

	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	return key, nil
}
