package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 2048 {
		t.Errorf("expected Capacity to be 2048, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 16 {
		t.Errorf("expected NumShards to be 16, got %d", cfg.NumShards)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if cfg.EarlyRefresh != nil {
		t.Error("expected EarlyRefresh to be disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{name: "valid default config", mutate: func(*Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantError: true},
		{name: "negative capacity", mutate: func(c *Config) { c.Capacity = -5 }, wantError: true},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantError: true},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantError: true},
		{name: "eviction percentage too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantError: true},
		{name: "negative eviction interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, wantError: true},
		{
			name: "early refresh window inverted",
			mutate: func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{
					MinAsyncRefreshTime: 20 * time.Second,
					MaxAsyncRefreshTime: 10 * time.Second,
				}
			},
			wantError: true,
		},
		{
			name: "early refresh valid",
			mutate: func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{
					MinAsyncRefreshTime: 10 * time.Second,
					MaxAsyncRefreshTime: 20 * time.Second,
					SyncRefreshTime:     30 * time.Second,
					RetryBaseDelay:      100 * time.Millisecond,
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantError {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected *ConfigError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := len(cfg.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no options for default config, got %d", got)
	}

	cfg.EvictionInterval = time.Minute
	cfg.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: time.Second, MaxAsyncRefreshTime: 2 * time.Second}
	if got := len(cfg.ToSturdycOptions()); got != 2 {
		t.Errorf("expected 2 options, got %d", got)
	}
}

func TestNewSturdycService_InvalidConfig(t *testing.T) {
	svc, err := NewSturdycService(Config{})
	if err == nil {
		t.Fatal("expected error for empty config")
	}
	if svc != nil {
		t.Error("expected nil service on error")
	}
}

func newService(t *testing.T) *SturdycService {
	t.Helper()
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService() failed: %v", err)
	}
	return svc
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return []string{"1. Metropolis"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrFetch(ctx, "ListAllCities", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch() failed: %v", err)
		}
		if lines, ok := got.([]string); !ok || len(lines) != 1 {
			t.Fatalf("unexpected value %#v", got)
		}
	}

	if calls != 1 {
		t.Errorf("expected fetch to run once, ran %d times", calls)
	}
}

func TestSturdycService_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	boom := errors.New("no results")

	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return nil, boom
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.GetOrFetch(ctx, "FindAutosByYear::1999", fetch); !errors.Is(err, boom) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("expected fetch to run on every call, ran %d times", calls)
	}
}

func TestSturdycService_NilFetch(t *testing.T) {
	svc := newService(t)
	if _, err := svc.GetOrFetch(context.Background(), "k", nil); !errors.Is(err, ErrNilFetch) {
		t.Errorf("expected ErrNilFetch, got %v", err)
	}
}

func TestSturdycService_Invalidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	seed := func(key string) {
		t.Helper()
		if _, err := svc.GetOrFetch(ctx, key, func(context.Context) (any, error) { return key, nil }); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	seed("a::ListAllCities")
	seed("a::ListAllAutos")
	seed("b::ListAllCities")
	seed("c::ListAllCities")

	if err := svc.DeleteByPrefix(ctx, "a::"); err != nil {
		t.Fatalf("DeleteByPrefix() failed: %v", err)
	}
	if got := svc.Size(); got != 2 {
		t.Errorf("expected 2 entries after prefix delete, got %d", got)
	}

	if err := svc.InvalidateKeys(ctx, []string{"b::ListAllCities"}); err != nil {
		t.Fatalf("InvalidateKeys() failed: %v", err)
	}
	if err := svc.Delete(ctx, "c::ListAllCities"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if got := svc.Size(); got != 0 {
		t.Errorf("expected empty cache, got %d entries", got)
	}
}
