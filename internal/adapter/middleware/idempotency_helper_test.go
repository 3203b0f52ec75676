package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"
)

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/loans/:loan_id/fund", strings.Repeat("b", 32), strings.Repeat("a", 32))
	want := "idemp:lending:post:/loans/:loan_id/fund:" + strings.Repeat("b", 32) + ":" + strings.Repeat("a", 32)
	if k != want {
		t.Fatalf("buildKey: got %q want %q", k, want)
	}
}

func Test_validReqID(t *testing.T) {
	for _, s := range []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
		strings.Repeat("a", 32),
		"  " + strings.Repeat("0", 32) + " ",
	} {
		if !validReqID(s) {
			t.Fatalf("expected valid: %q", s)
		}
	}
	for _, s := range []string{
		"",
		"not-a-uuid",
		strings.Repeat("a", 31),
		strings.Repeat("g", 32),
		"3f9a6a1b-3d54-7fbe-8b3a-6b3e8d6b2c88", // version 7
		"3f9a6a1b-3d54-4fbe-cb3a-6b3e8d6b2c88", // bad variant
	} {
		if validReqID(s) {
			t.Fatalf("expected invalid: %q", s)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	ref := time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)

	ok := map[string]time.Time{
		strconv.FormatInt(ref.Unix(), 10):      ref,
		strconv.FormatInt(ref.UnixMilli(), 10): ref,
		"2025-09-05T10:00:00+07:00":            ref,
		"2025-09-05T03:00:00Z":                 ref,
		"2025-09-05T03:00:00.5Z":               ref.Add(500 * time.Millisecond),
	}
	for raw, want := range ok {
		got, err := parseRequestAt(raw)
		if err != nil {
			t.Fatalf("%q: unexpected err %v", raw, err)
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("%q: got %v want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"", "   ", "2025-09-05T10:00:00", "2025-09-05", "yesterday"} {
		if _, err := parseRequestAt(raw); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}
}

func Test_provisionalSet_LoadEntry(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()

	key := buildKey("POST", "/loans", strings.Repeat("b", 32), strings.Repeat("a", 32))
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash([]byte(`{"a":1}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ok, err := provisionalSet(ctx, rdb, key, entry)
	if err != nil || !ok {
		t.Fatalf("provisionalSet 1: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set correctly: %v", ttl)
	}

	ok, err = provisionalSet(ctx, rdb, key, entry)
	if err != nil || ok {
		t.Fatalf("provisionalSet 2: want false/nil, got %v/%v", ok, err)
	}

	got, err := loadEntry(ctx, rdb, key)
	if err != nil {
		t.Fatalf("loadEntry err: %v", err)
	}
	if !got.InProgress || got.RequestID != entry.RequestID || got.BodySHA256 != entry.BodySHA256 {
		t.Fatalf("loaded entry mismatch: %+v vs %+v", got, entry)
	}

	if err := release(ctx, rdb, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := loadEntry(ctx, rdb, key); err == nil {
		t.Fatalf("entry still present after release")
	}
}

func Test_saveFinal_Load_TTL(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()

	key := buildKey("POST", "/loans", strings.Repeat("b", 32), strings.Repeat("a", 32))
	final := idempEntry{
		Code:       201,
		Body:       []byte(`{"ok":true}`),
		BodySHA256: bodyHash([]byte(`{"ok":true}`)),
		RequestID:  strings.Repeat("a", 32),
		CreatedAt:  nowUTC(),
	}

	ttlWant := 5 * time.Second
	if err := saveFinal(ctx, rdb, key, final, ttlWant); err != nil {
		t.Fatalf("saveFinal err: %v", err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > ttlWant {
		t.Fatalf("final TTL out of range: got %v want <= %v", ttl, ttlWant)
	}

	got, err := loadEntry(ctx, rdb, key)
	if err != nil {
		t.Fatalf("load after final err: %v", err)
	}
	if got.Code != 201 || string(got.Body) != `{"ok":true}` || got.InProgress {
		t.Fatalf("final entry mismatch: %+v", got)
	}
}
