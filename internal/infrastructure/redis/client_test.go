package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestConnectRetriesUntilAvailable(t *testing.T) {
	s := miniredis.NewMiniRedis()
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	addr := s.Addr()
	s.Close()

	go func() {
		time.Sleep(300 * time.Millisecond)
		_ = s.Restart()
	}()
	defer s.Close()

	client, err := Connect(context.Background(), fmt.Sprintf("redis://%s", addr), 10*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected client after retries, got %v", err)
	}
	defer client.Close()
}

func TestConnectInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://bad-url", time.Second, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}
