package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) (*RedisBus, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBus(rdb, "test:events", nil), mr
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event forwarded")
		return Event{}
	}
}

func TestRedisBus_ForwardsIntoHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus, mr := newTestBus(t)

	hub := NewHub(nil)
	client := &Client{ID: "sse", Events: make(chan Event, 4)}
	hub.Register(client)
	require.NoError(t, bus.StartForwarder(ctx, hub.Broadcast))

	// 非 JSON 消息被丢弃，后续事件照常转发
	mr.Publish("test:events", "not json")
	require.NoError(t, bus.Publish(ctx, New(HierarchyAdded, map[string]string{"parent_id": "p"})))

	e := receive(t, client.Events)
	assert.Equal(t, HierarchyAdded, e.Type)
	var data map[string]string
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, "p", data["parent_id"])
	assert.Empty(t, client.Events)
}

func TestRedisBus_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus, mr := newTestBus(t)

	got := make(chan Event, 4)
	require.NoError(t, bus.StartForwarder(ctx, func(e Event) { got <- e }))
	cancel()

	assert.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:events")["test:events"] == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), New(LibraryCleared, nil)))
	select {
	case e := <-got:
		t.Fatalf("event %s forwarded after cancel", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisBus_StartForwarderErrors(t *testing.T) {
	bus, mr := newTestBus(t)

	assert.Error(t, bus.StartForwarder(context.Background(), nil))

	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := bus.StartForwarder(ctx, func(Event) {})
	assert.ErrorContains(t, err, "redis subscribe")
}
