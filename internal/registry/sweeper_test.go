package registry

import (
	"context"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

func TestSweepExpired(t *testing.T) {
	reg := NewRegistry(30 * time.Second)
	key := mustKey(t, "page", "42")

	reg.Join(key, domain.User{ID: "u1"}, "c1", nil)
	reg.Join(key, domain.User{ID: "u2"}, "c2", nil)

	// до истечения TTL ничего не выселяем
	if n := reg.SweepExpired(time.Now()); n != 0 {
		t.Fatalf("expected 0 evictions before TTL, got %d", n)
	}
	if got := len(reg.List(key)); got != 2 {
		t.Fatalf("participants must survive an early sweep, got %d", got)
	}

	// после TTL — комната пустеет и удаляется
	future := time.Now().Add(31 * time.Second)
	if n := reg.SweepExpired(future); n != 2 {
		t.Fatalf("expected 2 evictions after TTL, got %d", n)
	}
	if got := len(reg.List(key)); got != 0 {
		t.Fatalf("expected empty room after sweep, got %d", got)
	}
}

func TestSweepExpired_KeepsFresh(t *testing.T) {
	reg := NewRegistry(30 * time.Second)
	key := mustKey(t, "page", "42")

	reg.Join(key, domain.User{ID: "stale"}, "c1", nil)
	time.Sleep(5 * time.Millisecond)
	reg.Join(key, domain.User{ID: "fresh"}, "c2", nil)

	// порог между двумя join: выживает только второй
	cutoff := reg.List(key)[1].LastSeenAt
	if n := reg.SweepExpired(cutoff.Add(30*time.Second - time.Millisecond)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}

	list := reg.List(key)
	if len(list) != 1 || list[0].User.ID != "fresh" {
		t.Fatalf("expected only fresh participant to survive, got %+v", list)
	}
}

func TestSweeper_Run(t *testing.T) {
	reg := NewRegistry(20 * time.Millisecond)
	key := mustKey(t, "page", "42")
	reg.Join(key, domain.User{ID: "u1"}, "c1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := NewSweeper(reg, 10*time.Millisecond)
	go sweeper.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(reg.List(key)) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sweeper did not evict silent participant within a second")
}
