package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

type cachedBeer struct {
	ID       int64  `json:"id"`
	BeerName string `json:"beerName"`
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.BeerKey(7)

	var dest cachedBeer
	found, err := client.GetJSON(ctx, key, &dest)
	if err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	if err := client.SetJSON(ctx, key, cachedBeer{ID: 7, BeerName: "Galaxy Cat IPA"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if mock.ttls[key] != time.Minute {
		t.Fatalf("expected ttl to be forwarded, got %v", mock.ttls[key])
	}

	found, err = client.GetJSON(ctx, key, &dest)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if dest.BeerName != "Galaxy Cat IPA" {
		t.Fatalf("unexpected cached value %+v", dest)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); !IsMiss(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestGetJSONSurfacesBackendErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = errors.New("connection refused")
	client := &Client{store: mock}

	var dest cachedBeer
	found, err := client.GetJSON(context.Background(), "bh:beer:1", &dest)
	if err == nil || found {
		t.Fatalf("expected backend error, found=%v err=%v", found, err)
	}
}

func TestGetJSONRejectsCorruptPayload(t *testing.T) {
	mock := newMockCmdable()
	mock.data["bh:beer:1"] = "{not json"
	client := &Client{store: mock}

	var dest cachedBeer
	if _, err := client.GetJSON(context.Background(), "bh:beer:1", &dest); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestNilClientIsNotInitialized(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op: %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.BeerKey(42); got != "bh:beer:42" {
		t.Fatalf("unexpected beer key %s", got)
	}
	if got := client.buildKey("beer", "", "1"); got != "bh:beer:1" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 5, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 5 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/3", DB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 3 {
		t.Fatalf("url settings should win, got addr=%s db=%d", opts.Addr, opts.DB)
	}
}

type mockCmdable struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
