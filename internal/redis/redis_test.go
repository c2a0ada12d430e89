package redis

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"vacationplanner/internal/auth"
	"vacationplanner/internal/config"
	"vacationplanner/internal/kv"
)

var _ kv.Store = (*Client)(nil)

func TestClientPutGetTTL(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	if _, found, err := client.Get(ctx, fmt.Sprintf("chat:missing_%d", time.Now().UnixNano())); err != nil || found {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}
	if err := client.Put(ctx, "passkey:pk_test", "registered", time.Hour); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, found, err := client.Get(ctx, "passkey:pk_test")
	if err != nil || !found || got != "registered" {
		t.Fatalf("Get = %q found=%v err=%v", got, found, err)
	}
	ttl, err := client.TTL(ctx, "passkey:pk_test")
	if err != nil {
		t.Fatalf("TTL error: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestRegistryRecordExpiresAfterOneYear(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	passkeyID := fmt.Sprintf("pk_ttl_%d", time.Now().UnixNano())
	if err := auth.NewService(client, 0, nil).Register(ctx, passkeyID); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	ttl, err := client.TTL(ctx, "passkey:"+passkeyID)
	if err != nil {
		t.Fatalf("TTL error: %v", err)
	}
	if ttl <= auth.DefaultPasskeyTTL-time.Minute || ttl > auth.DefaultPasskeyTTL {
		t.Fatalf("registry ttl = %v, want about %v", ttl, auth.DefaultPasskeyTTL)
	}
}

func TestNilClient(t *testing.T) {
	var client *Client
	if err := client.Put(context.Background(), "k", "v", 0); err == nil {
		t.Fatalf("expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
}

func newTestClient(t *testing.T) (*Client, func()) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis-backed tests")
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("atoi port: %v", err)
	}
	db := 0
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host: host,
			Port: port,
			DB:   db,
		},
	}
	client, err := NewRedisClient(cfg)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	return client, func() { client.Close() }
}
