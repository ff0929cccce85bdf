package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_BurstThenDeny(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	policy := Policy{RPM: 60, Burst: 1}

	allowed, err := store.Allow(ctx, ClassSend, "actor-1", policy, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed=true for a fresh bucket")
	}

	allowed, err = store.Allow(ctx, ClassSend, "actor-1", policy, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected allowed=false immediately after exhausting burst")
	}
}

func TestMemoryStore_RefillsOverTime(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	policy := Policy{RPM: 60, Burst: 1}

	if allowed, _ := store.Allow(ctx, ClassSend, "actor-2", policy, 1); !allowed {
		t.Fatalf("expected first request allowed")
	}

	time.Sleep(1100 * time.Millisecond)

	allowed, err := store.Allow(ctx, ClassSend, "actor-2", policy, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed=true after refill window elapsed")
	}
}

func TestMemoryStore_ClassesAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	policy := Policy{RPM: 60, Burst: 1}

	if allowed, _ := store.Allow(ctx, ClassSend, "actor-3", policy, 1); !allowed {
		t.Fatalf("expected send class to allow first request")
	}
	if allowed, _ := store.Allow(ctx, ClassSend, "actor-3", policy, 1); allowed {
		t.Fatalf("expected send class to deny second request")
	}

	// Same actor, different class: independent budget.
	allowed, err := store.Allow(ctx, ClassStatus, "actor-3", policy, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected status class to allow its own first request")
	}
}

func TestMemoryStore_ActorsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	policy := Policy{RPM: 60, Burst: 1}

	if allowed, _ := store.Allow(ctx, ClassSend, "actor-a", policy, 1); !allowed {
		t.Fatalf("expected actor-a to be allowed")
	}

	allowed, err := store.Allow(ctx, ClassSend, "actor-b", policy, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected actor-b to have its own untouched bucket")
	}
}
