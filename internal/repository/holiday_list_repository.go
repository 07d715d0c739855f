package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

// HolidayListRepository resolves named holiday lists to day sets.
type HolidayListRepository interface {
	// ResolveSet returns the holiday set for a list. An unknown list id
	// resolves to the empty set with a warning; it never blocks SLA days.
	ResolveSet(ctx context.Context, listID string) (domain.HolidaySet, error)
}

type holidayListRepository struct {
	pool     *pgxpool.Pool
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewHolidayListRepository instantiates the repository. The redis client is
// optional; without it every resolution hits the database.
func NewHolidayListRepository(pool *pgxpool.Pool, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) HolidayListRepository {
	return &holidayListRepository{pool: pool, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func cacheKey(listID string) string {
	return "holiday_list:" + listID
}

func (r *holidayListRepository) ResolveSet(ctx context.Context, listID string) (domain.HolidaySet, error) {
	if set, ok := r.fromCache(ctx, listID); ok {
		return set, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM holiday_lists WHERE id=$1)`, listID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		r.logger.Warn("holiday list not found, treating as no holidays", zap.String("holiday_list_id", listID))
		return domain.HolidaySet{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT holiday_date FROM holidays WHERE holiday_list_id=$1`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	set := domain.NewHolidaySet(dates)
	r.toCache(ctx, listID, set)
	return set, nil
}

func (r *holidayListRepository) fromCache(ctx context.Context, listID string) (domain.HolidaySet, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, cacheKey(listID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("holiday cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, false
	}
	return domain.HolidaySetFromKeys(keys), true
}

func (r *holidayListRepository) toCache(ctx context.Context, listID string, set domain.HolidaySet) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(set.Dates())
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(listID), raw, r.cacheTTL).Err(); err != nil {
		r.logger.Debug("holiday cache write failed", zap.Error(err))
	}
}
