package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

const (
	// TopicSessionInitialized receives an event for every materialized session
	TopicSessionInitialized = "walletauth.session_initialized"

	// TopicLogout receives an event for every revoked session
	TopicLogout = "walletauth.logout"
)

// SessionInitializedEvent is published when a session is materialized
type SessionInitializedEvent struct {
	SessionID string    `json:"session_id"`
	Address   string    `json:"address"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutEvent represents a logout event
type LogoutEvent struct {
	Address   string `json:"address"`
	SessionID string `json:"session_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishSessionInitialized publishes a session initialized event
func (p *WatermillPublisher) PublishSessionInitialized(ctx context.Context, handle core.SessionHandle) error {
	return p.publish(ctx, TopicSessionInitialized, handle.ID, SessionInitializedEvent{
		SessionID: handle.ID,
		Address:   handle.Address.String(),
		IssuedAt:  handle.IssuedAt,
		ExpiresAt: handle.ExpiresAt,
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address core.WalletAddress, sessionID string) error {
	return p.publish(ctx, TopicLogout, sessionID, LogoutEvent{
		Address:   address.String(),
		SessionID: sessionID,
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("key", key)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
