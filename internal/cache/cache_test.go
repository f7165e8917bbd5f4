package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedisStore(rdb)
	ctx := context.Background()

	mock.ExpectGet("scrape:miss").RedisNil()
	mock.ExpectGet("scrape:hit").SetVal(`{"company":"Acme"}`)
	mock.ExpectGet("scrape:broken").SetErr(errors.New("connection reset"))
	mock.ExpectSet("scrape:hit", []byte(`{"company":"Acme"}`), time.Minute).SetVal("OK")
	mock.ExpectDel("scrape:hit").SetVal(1)

	if _, ok, err := store.Get(ctx, "scrape:miss"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	b, ok, err := store.Get(ctx, "scrape:hit")
	if err != nil || !ok || string(b) != `{"company":"Acme"}` {
		t.Fatalf("unexpected hit result %q ok=%v err=%v", b, ok, err)
	}
	if _, _, err := store.Get(ctx, "scrape:broken"); err == nil {
		t.Fatalf("expected redis error")
	}
	if err := store.Set(ctx, "scrape:hit", []byte(`{"company":"Acme"}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(ctx, "scrape:hit"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet redis expectations: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Minute, time.Minute)
	ctx := context.Background()

	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss on empty store")
	}
	_ = store.Set(ctx, "k", []byte("v"), time.Minute)
	b, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("unexpected get result %q ok=%v err=%v", b, ok, err)
	}
	_ = store.Delete(ctx, "k")
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}

	_ = store.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "short"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}
