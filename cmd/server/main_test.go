package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/middleware"
	"github.com/iho/fintrack/internal/infrastructure/config"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestNewHTTPServer(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_IDLE_TIMEOUT", "90s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	srv := newHTTPServer(cfg, nil)
	if srv.Addr != ":9090" {
		t.Fatalf("expected :9090, got %s", srv.Addr)
	}
	if srv.IdleTimeout != 90*time.Second || srv.ReadTimeout != 30*time.Second {
		t.Fatalf("unexpected timeouts read=%s idle=%s", srv.ReadTimeout, srv.IdleTimeout)
	}
}

func TestReadinessChecks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	dbErr := errors.New("db down")
	checks := readinessChecks(pingerFunc(func(ctx context.Context) error { return dbErr }), client)

	if err := checks["postgres"](context.Background()); !errors.Is(err, dbErr) {
		t.Fatalf("expected postgres check to report %v, got %v", dbErr, err)
	}
	if err := checks["redis"](context.Background()); err != nil {
		t.Fatalf("expected redis to be ready, got %v", err)
	}

	mr.Close()
	if err := checks["redis"](context.Background()); err == nil {
		t.Fatalf("expected redis check to fail after shutdown")
	}
}

func TestCleanupLimitersStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		cleanupLimiters(ctx, middleware.NewRateLimiter(1, 1, nil), time.Millisecond, zerolog.Nop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
