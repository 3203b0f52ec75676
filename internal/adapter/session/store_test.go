package session

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sampleSession(t *testing.T) *domain.Session {
	t.Helper()
	u, err := user.New("u1", "Michael Chen", "michael@example.com", user.RoleLender)
	if err != nil {
		t.Fatalf("user.New: %v", err)
	}
	u.Lender.Badges = []string{"Top Supporter"}
	return &domain.Session{Token: "tok-1", User: u, Authenticated: true, CreatedAt: time.Now().UTC()}
}

func exercise(t *testing.T, s domain.Store) {
	t.Helper()
	ctx := context.Background()
	in := sampleSession(t)

	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Authenticated || got.User.ID != "u1" || got.User.Lender == nil || got.User.Lender.Badges[0] != "Top Supporter" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.DarkMode = true
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	again, _ := s.Get(ctx, "tok-1")
	if !again.DarkMode {
		t.Fatalf("preference not persisted")
	}

	if err := s.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "tok-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("after delete: want ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expires(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	if err := s.Save(context.Background(), sampleSession(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := s.Get(context.Background(), "tok-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired: want ErrNotFound, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exercise(t, NewRedisStore(rdb, time.Hour))
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisStore(rdb, time.Minute)

	if err := s.Save(context.Background(), sampleSession(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "tok-1"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(context.Background(), "tok-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired: want ErrNotFound, got %v", err)
	}
}
