package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"stockbook/config"
	"stockbook/internal/services/pos"
)

func TestNewPublisher_ClosesClient(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	publisher, closePublisher := newPublisher(config.Config{
		Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	})
	require.IsType(t, &pos.RedisPublisher{}, publisher)

	event := pos.Event{EventType: pos.EventSaleCreated, EntityID: "SALE-1"}
	require.NoError(t, publisher.Publish(ctx, event))

	closePublisher()
	require.Error(t, publisher.Publish(ctx, event))
}

func TestNewPublisher_FallsBackWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	publisher, closePublisher := newPublisher(config.Config{
		Redis: config.RedisConfig{Host: host, Port: port},
	})
	require.Equal(t, pos.NopPublisher{}, publisher)
	closePublisher()
}
