package redisstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

// creates new client connected to miniredis for testing
func newMini(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	rc, err := New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestSetGet(t *testing.T) {
	rc, _ := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rc.Set(ctx, "img1/info.json", []byte(`{"width":4096}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	b, found, err := rc.Get(ctx, "img1/info.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || string(b) != `{"width":4096}` {
		t.Fatalf("Get = %q found=%v", b, found)
	}

	_, found, err = rc.Get(ctx, "img1/missing")
	if err != nil {
		t.Fatalf("Get miss: %v", err)
	}
	if found {
		t.Fatal("miss reported as found")
	}
}

func TestSet_TTL(t *testing.T) {
	rc, mr := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, found, err := rc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("key survived its TTL")
	}
}

func TestDelByPattern(t *testing.T) {
	rc, _ := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	keys := []string{
		"img1/info.json",
		"img1/0,0,256,256-256,-0-default.jpg",
		"img2/info.json",
	}
	for _, k := range keys {
		if err := rc.Set(ctx, k, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set %q: %v", k, err)
		}
	}

	n, err := rc.DelByPattern(ctx, "*img1/*")
	if err != nil {
		t.Fatalf("DelByPattern: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted %d keys, want 2", n)
	}

	_, found, err := rc.Get(ctx, "img2/info.json")
	if err != nil || !found {
		t.Fatalf("unrelated key gone: found=%v err=%v", found, err)
	}
}

func TestContextDeadline_IsRespected(t *testing.T) {
	rc, _ := newMini(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rc.Set(ctx, "k", []byte("v"), time.Second); err == nil {
		t.Fatal("expected error on Set with canceled context")
	}
	if _, _, err := rc.Get(ctx, "k"); err == nil {
		t.Fatal("expected error on Get with canceled context")
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("New with empty addr succeeded")
	}
}
