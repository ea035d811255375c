package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "abonnement fermé")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("aucun événement reçu")
		return Event{}
	}
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := NewRedisBus(client, nil)
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, "u1", Event{Type: EventUpdated, Origin: "s1"}))
	ev := receive(t, sub)
	assert.Equal(t, EventUpdated, ev.Type)
	assert.Equal(t, "s1", ev.Origin)

	// un message illisible est ignoré, le suivant arrive
	mr.Publish(Channel("u1"), "cleared")
	mr.Publish(Channel("u1"), `{"type":"cleared","origin":"s2"}`)
	ev = receive(t, sub)
	assert.Equal(t, EventCleared, ev.Type)
	assert.Equal(t, "s2", ev.Origin)
}

func TestLocalBus_ScopedToUser(t *testing.T) {
	bus := NewLocalBus()
	ctx := context.Background()

	mine, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, "u2")
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, bus.Publish(ctx, "u1", Event{Type: EventUpdated}))
	assert.Equal(t, EventUpdated, receive(t, mine).Type)

	select {
	case ev := <-other.Events():
		t.Fatalf("événement inattendu: %+v", ev)
	default:
	}

	require.NoError(t, mine.Close())
	require.NoError(t, mine.Close())
	_, ok := <-mine.Events()
	assert.False(t, ok)
	assert.NoError(t, bus.Publish(ctx, "u1", Event{Type: EventUpdated}))
}
