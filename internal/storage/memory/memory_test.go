package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quattrini/internal/storage"
)

func TestMemoryStorePutGetClear(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("unexpected get: ok=%v err=%v", ok, err)
	}

	value := []byte(`["a"]`)
	if err := s.Put(ctx, "tags", value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'x'

	got, ok, err := s.Get(ctx, "tags")
	if err != nil || !ok || string(got) != `["a"]` {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}

	if err := s.Clear(ctx); err != nil || s.Keys() != 0 {
		t.Fatalf("clear failed: keys=%d err=%v", s.Keys(), err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "none.json"))
	if err != nil || s.Keys() != 0 {
		t.Fatalf("expected empty store when file missing: keys=%d err=%v", s.Keys(), err)
	}

	path := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(path, []byte(`{"tags":["food","travel"],"filterCurrency":"€"}`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	got, ok, _ := s.Get(context.Background(), "filterCurrency")
	if !ok || string(got) != `"€"` {
		t.Fatalf("unexpected seeded value: %q", got)
	}

	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMemoryStorePutMany(t *testing.T) {
	ctx := context.Background()
	s := New()
	var _ storage.Store = s

	value := []byte(`["p1"]`)
	if err := s.PutMany(ctx, []storage.Entry{
		{Key: storage.KeyPeople, Value: value},
		{Key: storage.KeyTags, Value: []byte(`[]`)},
	}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	value[0] = 'x'

	if got, ok, _ := s.Get(ctx, storage.KeyPeople); !ok || string(got) != `["p1"]` {
		t.Fatalf("people = %q ok=%v", got, ok)
	}
	if s.Keys() != 2 {
		t.Fatalf("keys = %d, want 2", s.Keys())
	}
}
