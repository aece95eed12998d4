package framework

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "framework.json"), nil, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisStore(client, "test:framework", nil, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s, mr
}

// storeContract runs the behaviour every Store implementation shares.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("load returns defaults before first save", func(t *testing.T) {
		s := newStore(t)
		f, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), f.Version)
		assert.True(t, f.UpdatedAt.IsZero())
		assert.Equal(t, Default().Principles, f.Principles)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		s := newStore(t)
		f, err := s.Load(ctx)
		require.NoError(t, err)

		f.Principles = append(f.Principles, "Prefer automation over headcount")
		f.Dimensions.FinancialHealth.Weight = 50
		f.Dimensions.AIReadiness.Weight = 15
		f.DepartmentGuidelines["Legal"] = "Track contract cycle time"

		saved, err := s.Save(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), saved.Version)
		assert.True(t, saved.UpdatedAt.Equal(fixedNow))

		loaded, err := s.Load(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(saved, loaded); diff != "" {
			t.Errorf("round-trip mismatch (-saved +loaded):\n%s", diff)
		}
	})

	t.Run("empty guidelines stay empty", func(t *testing.T) {
		s := newStore(t)
		f := Default()
		f.DepartmentGuidelines = map[string]string{}

		saved, err := s.Save(ctx, f)
		require.NoError(t, err)

		loaded, err := s.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded.DepartmentGuidelines)
		assert.Empty(t, loaded.DepartmentGuidelines)
		if diff := cmp.Diff(saved, loaded); diff != "" {
			t.Errorf("round-trip mismatch (-saved +loaded):\n%s", diff)
		}
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		s := newStore(t)
		f, err := s.Load(ctx)
		require.NoError(t, err)

		_, err = s.Save(ctx, f)
		require.NoError(t, err)

		// Second writer still holds version 0.
		_, err = s.Save(ctx, f)
		assert.ErrorIs(t, err, ErrVersionConflict)

		loaded, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), loaded.Version)
	})

	t.Run("invalid document is rejected", func(t *testing.T) {
		s := newStore(t)
		f := Default()
		f.Dimensions.AIReadiness.Weight = 99

		_, err := s.Save(ctx, f)
		assert.ErrorIs(t, err, ErrInvalidFramework)
	})

	t.Run("reset restores defaults with a new version", func(t *testing.T) {
		s := newStore(t)
		f := Default()
		f.Principles = []string{"Only one"}
		_, err := s.Save(ctx, f)
		require.NoError(t, err)

		reset, err := s.Reset(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), reset.Version)
		assert.Equal(t, Default().Principles, reset.Principles)
	})
}

func TestFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return newFileStore(t) })
}

func TestRedisStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		s, _ := newRedisStore(t)
		return s
	})
}

func TestFileStore_CorruptFile(t *testing.T) {
	s := newFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.path), 0o755))
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o600))

	_, err := s.Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_ConcurrentSavesOneWins(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, Default())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrVersionConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)
}

func TestRedisStore_StoresJSONUnderKey(t *testing.T) {
	s, mr := newRedisStore(t)
	_, err := s.Save(context.Background(), Default())
	require.NoError(t, err)

	raw, err := mr.Get("test:framework")
	require.NoError(t, err)
	assert.Contains(t, raw, `"version":1`)
	assert.NoError(t, s.Ping(context.Background()))
}
