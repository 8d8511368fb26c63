package repository

import (
	"context"
	"strconv"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

type countingAttendanceRepo struct {
	*InMemoryAttendanceRepository
	lists int

	// afterList runs once, after the history was read and before it is returned.
	afterList func()
}

func (c *countingAttendanceRepo) ListByUserID(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	c.lists++
	days, err := c.InMemoryAttendanceRepository.ListByUserID(ctx, userID)
	if hook := c.afterList; hook != nil {
		c.afterList = nil
		hook()
	}
	return days, err
}

func setupTestRedis(t *testing.T) *redis.Client {
	db, _ := strconv.Atoi(getEnv("REDIS_TEST_DB", "1"))
	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCachedAttendanceRepository_Integration(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	inner := &countingAttendanceRepo{InMemoryAttendanceRepository: NewInMemoryAttendanceRepository()}
	repo := NewCachedAttendanceRepository(inner, rdb)

	require.NoError(t, repo.Upsert(ctx, domain.NewAttendanceDay("u1", domain.AttendanceInput{Date: "2024-03-04", TotalClasses: 4, Status: domain.StatusPresent})))

	t.Run("Should serve repeated reads from cache", func(t *testing.T) {
		first, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)
		second, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)

		assert.Equal(t, 1, inner.lists)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].Date, second[0].Date)
		assert.Equal(t, "u1", second[0].UserID)
	})

	t.Run("Should serve ranges from the cached history", func(t *testing.T) {
		days, err := repo.ListInRange(ctx, "u1", "2024-03-01", "2024-03-31")
		require.NoError(t, err)
		assert.Len(t, days, 1)
		assert.Equal(t, 1, inner.lists)
	})

	t.Run("Should invalidate on write", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, domain.NewAttendanceDay("u1", domain.AttendanceInput{Date: "2024-03-05", TotalClasses: 4, Status: domain.StatusAbsent})))

		days, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, days, 2)
		assert.Equal(t, 2, inner.lists)

		require.NoError(t, repo.Delete(ctx, "u1", "2024-03-05"))
		days, _ = repo.ListByUserID(ctx, "u1")
		assert.Len(t, days, 1)
	})

	t.Run("Should recover from corrupted cache entries", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "attendance:u1", "{not json", 0).Err())

		days, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, days, 1)
	})
}

func TestCachedAttendanceRepository_StaleFillAfterWrite(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	inner := &countingAttendanceRepo{InMemoryAttendanceRepository: NewInMemoryAttendanceRepository()}
	repo := NewCachedAttendanceRepository(inner, rdb)

	require.NoError(t, repo.Upsert(ctx, domain.NewAttendanceDay("u1", domain.AttendanceInput{Date: "2024-03-04", TotalClasses: 4, Status: domain.StatusPresent})))

	// A write lands while the reader holds a history that no longer includes it.
	inner.afterList = func() {
		require.NoError(t, repo.Upsert(ctx, domain.NewAttendanceDay("u1", domain.AttendanceInput{Date: "2024-03-05", TotalClasses: 4, Status: domain.StatusAbsent})))
	}

	stale, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	exists, err := rdb.Exists(ctx, "attendance:u1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "a history read before the write must not be cached")

	fresh, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Equal(t, 2, inner.lists)

	cached, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.Equal(t, 2, inner.lists)
}
