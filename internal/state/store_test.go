package state

import (
	"context"
	"testing"
)

func TestMemoryStoreBasicOps(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "post:a"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	for k, v := range map[string]string{"post:a": "1", "post:b": "2", "other:c": "3"} {
		if err := s.Put(ctx, k, v); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	v, ok, err := s.Get(ctx, "post:a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || v != "1" {
		t.Fatalf("expected value 1, got %q (ok=%v)", v, ok)
	}

	keys, err := s.List(ctx, "post:")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys under prefix, got %d: %v", len(keys), keys)
	}
	if keys[0] != "post:a" || keys[1] != "post:b" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := s.Delete(ctx, "post:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "post:a"); ok {
		t.Fatalf("expected key deleted")
	}

	keys, err = s.List(ctx, "post:")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0] != "post:b" {
		t.Fatalf("unexpected keys after delete: %v", keys)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, "post:a", "old"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "post:a", "new"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v, ok, err := s.Get(ctx, "post:a")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if v != "new" {
		t.Fatalf("expected overwritten value, got %q", v)
	}

	keys, err := s.List(ctx, "post:")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected a single key after overwrite, got %v", keys)
	}
}
