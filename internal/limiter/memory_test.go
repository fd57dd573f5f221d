package limiter

import (
	"context"
	"testing"
	"time"
)

func TestMemory_BlocksAfterMaxFails(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(Policy{Window: time.Minute, MaxFails: 3, BlockFor: 5 * time.Minute})
	m.now = func() time.Time { return now }
	ip := HashIP("10.0.0.1")

	for i := 0; i < 2; i++ {
		if blocked, _, _ := m.Failure(ctx, "alice", ip); blocked {
			t.Fatalf("blocked too early at failure %d", i+1)
		}
	}
	blocked, dur, err := m.Failure(ctx, "alice", ip)
	if err != nil || !blocked || dur != 5*time.Minute {
		t.Fatalf("third failure: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	if ok, left, _ := m.Allow(ctx, "alice", ip); ok || left != 5*time.Minute {
		t.Fatalf("want blocked, ok=%v left=%v", ok, left)
	}
	if ok, _, _ := m.Allow(ctx, "alice", HashIP("10.0.0.2")); !ok {
		t.Fatalf("other address must not be blocked")
	}

	now = now.Add(6 * time.Minute)
	if ok, _, _ := m.Allow(ctx, "alice", ip); !ok {
		t.Fatalf("block should have expired")
	}
}

func TestMemory_WindowResetsAndSuccessClears(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(Policy{Window: time.Minute, MaxFails: 2, BlockFor: time.Minute})
	m.now = func() time.Time { return now }
	ip := HashIP("10.0.0.1")

	_, _, _ = m.Failure(ctx, "bob", ip)
	now = now.Add(2 * time.Minute)
	if blocked, _, _ := m.Failure(ctx, "bob", ip); blocked {
		t.Fatalf("failures outside the window must not accumulate")
	}

	if err := m.Success(ctx, "bob", ip); err != nil {
		t.Fatalf("success: %v", err)
	}
	if blocked, _, _ := m.Failure(ctx, "bob", ip); blocked {
		t.Fatalf("success must reset the counter")
	}
}
