package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// ServiceLevelRepository loads service-level definitions.
type ServiceLevelRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ServiceLevel, error)
	// GetActiveFor resolves the agreement covering a customer and priority:
	// a customer-specific agreement wins over the default one. Returns
	// pgx.ErrNoRows when no agreement applies.
	GetActiveFor(ctx context.Context, customerID *string, priority domain.TicketPriority) (*domain.ServiceLevel, error)
	List(ctx context.Context, limit, offset int) ([]domain.ServiceLevel, error)
}

type serviceLevelRepository struct {
	pool *pgxpool.Pool
}

// NewServiceLevelRepository instantiates repository.
func NewServiceLevelRepository(pool *pgxpool.Pool) ServiceLevelRepository {
	return &serviceLevelRepository{pool: pool}
}

const serviceLevelColumns = `id, name, customer_id, holiday_list_id, active, created_at, updated_at`

func (r *serviceLevelRepository) GetByID(ctx context.Context, id string) (*domain.ServiceLevel, error) {
	const query = `SELECT ` + serviceLevelColumns + ` FROM service_levels WHERE id=$1`
	level, err := r.scanLevel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}

func (r *serviceLevelRepository) GetActiveFor(ctx context.Context, customerID *string, priority domain.TicketPriority) (*domain.ServiceLevel, error) {
	if customerID != nil {
		const query = `
            SELECT sl.id, sl.name, sl.customer_id, sl.holiday_list_id, sl.active, sl.created_at, sl.updated_at
            FROM service_levels sl
            JOIN service_level_priorities slp ON slp.service_level_id = sl.id
            WHERE sl.active AND sl.customer_id=$1 AND slp.priority=$2
            ORDER BY sl.created_at ASC LIMIT 1`
		level, err := r.scanLevel(r.pool.QueryRow(ctx, query, *customerID, priority))
		if err == nil {
			if err := r.loadChildren(ctx, level); err != nil {
				return nil, err
			}
			return level, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	const query = `
        SELECT sl.id, sl.name, sl.customer_id, sl.holiday_list_id, sl.active, sl.created_at, sl.updated_at
        FROM service_levels sl
        JOIN service_level_priorities slp ON slp.service_level_id = sl.id
        WHERE sl.active AND sl.customer_id IS NULL AND slp.priority=$1
        ORDER BY sl.created_at ASC LIMIT 1`
	level, err := r.scanLevel(r.pool.QueryRow(ctx, query, priority))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}

func (r *serviceLevelRepository) List(ctx context.Context, limit, offset int) ([]domain.ServiceLevel, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + serviceLevelColumns + ` FROM service_levels ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceLevel
	for rows.Next() {
		level, err := r.scanLevel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *level)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *serviceLevelRepository) scanLevel(row pgx.Row) (*domain.ServiceLevel, error) {
	var level domain.ServiceLevel
	if err := row.Scan(
		&level.ID,
		&level.Name,
		&level.CustomerID,
		&level.HolidayListID,
		&level.Active,
		&level.CreatedAt,
		&level.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *serviceLevelRepository) loadChildren(ctx context.Context, level *domain.ServiceLevel) error {
	const priorityQuery = `
        SELECT priority, response_allotment, response_unit, resolution_allotment, resolution_unit
        FROM service_level_priorities WHERE service_level_id=$1 ORDER BY priority`
	rows, err := r.pool.Query(ctx, priorityQuery, level.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var row domain.ServiceLevelPriority
		if err := rows.Scan(
			&row.Priority,
			&row.ResponseAllotment,
			&row.ResponseUnit,
			&row.ResolutionAllotment,
			&row.ResolutionUnit,
		); err != nil {
			return err
		}
		level.Priorities = append(level.Priorities, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const windowQuery = `
        SELECT weekday, start_seconds, end_seconds
        FROM support_windows WHERE service_level_id=$1 ORDER BY weekday`
	wrows, err := r.pool.Query(ctx, windowQuery, level.ID)
	if err != nil {
		return err
	}
	defer wrows.Close()
	for wrows.Next() {
		var weekday int
		var startSec, endSec int64
		if err := wrows.Scan(&weekday, &startSec, &endSec); err != nil {
			return err
		}
		level.Windows = append(level.Windows, domain.SupportWindow{
			Weekday: time.Weekday(weekday),
			Start:   time.Duration(startSec) * time.Second,
			End:     time.Duration(endSec) * time.Second,
		})
	}
	return wrows.Err()
}
