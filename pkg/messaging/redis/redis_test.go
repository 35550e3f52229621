package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medibook/pkg/circuitbreaker"
)

func TestPublishSubscribe(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	broker, err := NewRedisBroker(Config{URL: url}, zerolog.Nop())
	require.NoError(t, err)
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel := "appointments-test-" + time.Now().Format("150405.000000")
	msgs, err := broker.Subscribe(ctx, channel)
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, channel, map[string]string{"type": "appointment.created"}))

	select {
	case msg := <-msgs:
		assert.JSONEq(t, `{"type":"appointment.created"}`, string(msg))
	case <-ctx.Done():
		t.Fatal("no message received")
	}

	cancel()
	for range msgs {
	}
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(Config{URL: "not-a-url"}, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestPublishOpensBreakerWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	b := newBroker(client, zerolog.Nop())
	defer b.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := b.Publish(ctx, "appointments", "event")
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}
	assert.Equal(t, circuitbreaker.StateOpen, b.cb.State())
	assert.ErrorIs(t, b.Publish(ctx, "appointments", "event"), circuitbreaker.ErrOpen)
}
