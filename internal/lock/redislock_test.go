package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestWithLockSerialises(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	locker := Locker{R: client, RetryBackoff: 5 * time.Millisecond}

	var order []int
	done := make(chan struct{})
	err = locker.WithLock(context.Background(), "lock:test", time.Second, func(ctx context.Context) error {
		order = append(order, 1)
		go func() {
			defer close(done)
			_ = locker.WithLock(context.Background(), "lock:test", time.Second, func(ctx context.Context) error {
				order = append(order, 2)
				return nil
			})
		}()
		// give the second acquirer a chance to contend
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("with lock: %v", err)
	}
	<-done
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected execution order: %v", order)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	locker := Locker{R: client}
	boom := errors.New("boom")
	if err := locker.WithLock(context.Background(), "lock:test", time.Second, func(ctx context.Context) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if mr.Exists("lock:test") {
		t.Fatal("lock should be released after the callback fails")
	}
}

func TestWithLockWithoutRedisRunsDirectly(t *testing.T) {
	var ran bool
	if err := (Locker{}).WithLock(context.Background(), "lock:test", time.Second, func(ctx context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("with lock: %v", err)
	}
	if !ran {
		t.Fatal("callback should run without redis")
	}
}
