//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPublishLogout_RedisStream(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: client}, watermill.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: "walletauth-test",
		OldestId:      "0",
	}, watermill.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = subscriber.Close() })

	subCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	messages, err := subscriber.Subscribe(subCtx, TopicLogout)
	require.NoError(t, err)

	pub := NewWatermillPublisher(publisher)
	require.NoError(t, pub.PublishLogout(ctx, "0xAbC123000000000000000000000000000000dEaD", "session-1"))

	msg := receive(t, messages)
	var event LogoutEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, "session-1", msg.Metadata.Get("key"))
}
