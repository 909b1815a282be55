package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "results"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache should miss")
	}

	if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v; want payload hit", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("line1\nline2"), 0))

	now = now.Add(59 * time.Second)
	_, hit, _ := c.Get(ctx, "short")
	assert.True(t, hit)

	now = now.Add(2 * time.Second)
	_, hit, _ = c.Get(ctx, "short")
	assert.False(t, hit, "expired entry should miss")

	data, hit, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "line1\nline2", string(data))
}

func TestFileCacheStats(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	n, size, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, size)

	require.NoError(t, c.Set(ctx, "a", []byte("12345"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("1"), 0))
	n, size, err = c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(len("0\n12345")+len("0\n1")), size)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not-a-header"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir should be empty, has %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash([]byte("((A,B),C)")), Hash([]byte("((A,B),C)")))
	assert.NotEqual(t, Hash([]byte("((A,B),C)")), Hash([]byte("(A,(B,C))")))
	assert.Len(t, Hash(nil), 64)
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	rk1 := k.ResultKey("((0,1),2)|(0,(1,2))", ResultKeyOpts{Budget: 0})
	rk2 := k.ResultKey("((0,1),2)|(0,(1,2))", ResultKeyOpts{Budget: 3})
	if rk1 == rk2 {
		t.Error("Different ResultKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(rk1, "result:") {
		t.Errorf("ResultKey should be prefixed: %s", rk1)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Network: 0})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Network: 1})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	assert.Equal(t, "staging:"+inner.ResultKey("x", ResultKeyOpts{}), scoped.ResultKey("x", ResultKeyOpts{}))
	assert.True(t, strings.HasPrefix(NewScopedKeyer(nil, "p:").ArtifactKey("h", ArtifactKeyOpts{}), "p:artifact:"))
	assert.Equal(t, inner, NewScopedKeyer(inner, ""))
}

func TestRetryableError(t *testing.T) {
	assert.NoError(t, Retryable(nil))

	err := Retryable(ErrUnavailable)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, IsRetryable(ErrUnavailable))
	assert.True(t, IsRetryable(fmt.Errorf("dial: %w", err)))
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	errBad := errors.New("bad key")
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}

	tests := []struct {
		name      string
		fails     int
		cause     error
		wantErr   error
		wantCalls int
	}{
		{"first try", 0, nil, nil, 1},
		{"recovers", 2, Retryable(ErrUnavailable), nil, 3},
		{"gives up", 5, Retryable(ErrUnavailable), ErrUnavailable, 3},
		{"permanent error", 5, errBad, errBad, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Do(ctx, func() error {
				calls++
				if calls <= tt.fails {
					return tt.cause
				}
				return nil
			})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestBackoffZeroAttempts(t *testing.T) {
	calls := 0
	err := Backoff{}.Do(context.Background(), func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	assert.ErrorIs(t, err, context.Canceled)
}
