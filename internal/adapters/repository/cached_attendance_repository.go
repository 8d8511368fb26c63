package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

var _ domain.AttendanceRepository = (*CachedAttendanceRepository)(nil)

const (
	attendanceCacheTTL = 30 * time.Minute
	attendanceGenTTL   = 24 * time.Hour
)

// CachedAttendanceRepository keeps each student's full attendance history in
// Redis. Range reads are served from the cached history; derived views such
// as forecasts are never cached.
//
// Every invalidation bumps a per-user generation counter. A reader only fills
// the cache if the generation it saw before loading is still current, so a
// history loaded before a concurrent write is never stored after it.
type CachedAttendanceRepository struct {
	next  domain.AttendanceRepository
	cache *redis.Client
}

func NewCachedAttendanceRepository(next domain.AttendanceRepository, cache *redis.Client) *CachedAttendanceRepository {
	return &CachedAttendanceRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedAttendanceRepository) cacheKey(userID string) string {
	return fmt.Sprintf("attendance:%s", userID)
}

func (r *CachedAttendanceRepository) genKey(userID string) string {
	return fmt.Sprintf("attendance:%s:gen", userID)
}

func (r *CachedAttendanceRepository) invalidate(ctx context.Context, userID string) {
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.genKey(userID))
		pipe.Expire(ctx, r.genKey(userID), attendanceGenTTL)
		pipe.Del(ctx, r.cacheKey(userID))
		return nil
	})
	if err != nil {
		log.Printf("[CACHE] Failed to invalidate attendance for user %s: %v", userID, err)
	}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// generation returns the current stamp, "" when none was issued yet.
func generation(ctx context.Context, c stringGetter, key string) (string, error) {
	gen, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// fill stores days unless the generation moved past seen. WATCH aborts the
// transaction if an invalidation lands between the check and the SET.
func (r *CachedAttendanceRepository) fill(ctx context.Context, userID, seen string, days []domain.AttendanceDay) {
	data, err := json.Marshal(days)
	if err != nil {
		return
	}

	genKey := r.genKey(userID)
	err = r.cache.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != seen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.cacheKey(userID), data, attendanceCacheTTL)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		log.Printf("[CACHE] Skipped stale attendance fill for user %s", userID)
	default:
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}

var errStaleGeneration = errors.New("attendance cache generation moved")

func (r *CachedAttendanceRepository) ListByUserID(ctx context.Context, userID string) ([]domain.AttendanceDay, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var days []domain.AttendanceDay
		if err := json.Unmarshal([]byte(val), &days); err == nil {
			return withOwner(days, userID), nil
		}

		log.Printf("[CACHE] Corrupted attendance for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	seen, genErr := generation(ctx, r.cache, r.genKey(userID))

	days, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		r.fill(ctx, userID, seen, days)
	}

	return days, nil
}

func (r *CachedAttendanceRepository) ListInRange(ctx context.Context, userID, start, end string) ([]domain.AttendanceDay, error) {
	days, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.FilterInRange(days, start, end), nil
}

func (r *CachedAttendanceRepository) GetByDate(ctx context.Context, userID, date string) (*domain.AttendanceDay, error) {
	return r.next.GetByDate(ctx, userID, date)
}

func (r *CachedAttendanceRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]domain.AttendanceDay, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedAttendanceRepository) Upsert(ctx context.Context, day *domain.AttendanceDay) error {
	if err := r.next.Upsert(ctx, day); err != nil {
		return err
	}
	r.invalidate(ctx, day.UserID)
	return nil
}

func (r *CachedAttendanceRepository) UpdateIfVersion(ctx context.Context, day *domain.AttendanceDay, expected int) error {
	if err := r.next.UpdateIfVersion(ctx, day, expected); err != nil {
		return err
	}
	r.invalidate(ctx, day.UserID)
	return nil
}

func (r *CachedAttendanceRepository) Delete(ctx context.Context, userID, date string) error {
	if err := r.next.Delete(ctx, userID, date); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

// withOwner restores the user id, which is not part of the JSON form.
func withOwner(days []domain.AttendanceDay, userID string) []domain.AttendanceDay {
	for i := range days {
		days[i].UserID = userID
	}
	return days
}
