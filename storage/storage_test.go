package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return map[string]Storage{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "state", "console.json")),
		"redis":  NewRedis(rdb, "test", 0),
	}
}

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, KeyAuthToken); err != nil || ok {
				t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
			}

			if err := s.Set(ctx, KeyAuthToken, "tok-1"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, KeyUser, `{"id":1}`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			v, ok, err := s.Get(ctx, KeyAuthToken)
			if err != nil || !ok || v != "tok-1" {
				t.Fatalf("Get = %q, %v, %v", v, ok, err)
			}

			if err := s.Remove(ctx, SessionKeys()...); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			for _, k := range []string{KeyAuthToken, KeyUser} {
				if _, ok, _ := s.Get(ctx, k); ok {
					t.Fatalf("expected %s removed", k)
				}
			}

			if err := s.Remove(ctx, "never-set"); err != nil {
				t.Fatalf("Remove of missing key should be a no-op: %v", err)
			}
		})
	}
}

func TestFileStorageToleratesCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFile(path)
	if _, ok, err := s.Get(context.Background(), KeyUser); err != nil || ok {
		t.Fatalf("corrupt file should read as empty, ok=%v err=%v", ok, err)
	}
	if err := s.Set(context.Background(), KeyUser, "u"); err != nil {
		t.Fatalf("Set should replace corrupt file: %v", err)
	}
	if v, ok, _ := s.Get(context.Background(), KeyUser); !ok || v != "u" {
		t.Fatalf("Get after repair = %q, %v", v, ok)
	}
}

func TestFileStoragePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.json")
	ctx := context.Background()

	if err := NewFile(path).Set(ctx, KeyResetEmail, "a@b.c"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := NewFile(path).Get(ctx, KeyResetEmail)
	if err != nil || !ok || v != "a@b.c" {
		t.Fatalf("Get from second instance = %q, %v, %v", v, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestRedisStorageTTLAndPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedis(rdb, "", time.Minute)
	if err := s.Set(context.Background(), KeyAuthToken, "t"); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("pa:authToken") {
		t.Fatal("expected default prefix pa")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := s.Get(context.Background(), KeyAuthToken); ok {
		t.Fatal("expected key to expire")
	}
}

func TestRedisStorageUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	s := NewRedis(rdb, "pa", 0)
	if _, _, err := s.Get(context.Background(), KeyUser); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
