package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryRedis struct {
	values map[string]string
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestRedisLockIsExclusiveAcrossOwners(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	first, err := NewRedisLock(store, "mukayese:cron:fx-seed", 0)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	second, _ := NewRedisLock(store, "mukayese:cron:fx-seed", 0)
	ctx := context.Background()

	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatalf("first acquire should succeed")
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("second acquire should fail while held")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("non-owner release: %v", err)
	}
	if _, ok := store.values["mukayese:cron:fx-seed"]; !ok {
		t.Fatalf("non-owner release removed the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestLocalLockSkipsOverlappingCycles(t *testing.T) {
	var lock LocalLock
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("first acquire should succeed")
	}
	if ok, _ := lock.Acquire(ctx); ok {
		t.Fatalf("overlapping acquire should fail")
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("acquire after release should succeed")
	}
}
