package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FetchLogRepo struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

func NewFetchLogRepo(db *pgxpool.Pool, logger *logger.Logger) *FetchLogRepo {
	return &FetchLogRepo{
		db:     db,
		logger: logger.Component("repository/postgres"),
	}
}

func (r *FetchLogRepo) Record(ctx context.Context, record *domain.FetchRecord) error {
	query := `
		INSERT INTO fetch_log (id, resource, user_id, outcome, error, started_at, duration_us)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		string(record.Resource),
		record.UserID,
		string(record.Outcome),
		record.Error,
		record.StartedAt,
		record.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert fetch record: %w", err)
	}

	return nil
}

func (r *FetchLogRepo) Recent(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	query := `
		SELECT id, resource, user_id, outcome, error, started_at, duration_us
		FROM fetch_log
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetch log: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.FetchRecord, 0, limit)
	for rows.Next() {
		var (
			rec        domain.FetchRecord
			resource   string
			outcome    string
			durationUs int64
		)
		if err := rows.Scan(&rec.ID, &resource, &rec.UserID, &outcome, &rec.Error, &rec.StartedAt, &durationUs); err != nil {
			return nil, fmt.Errorf("scan fetch record: %w", err)
		}
		rec.Resource = domain.FetchResource(resource)
		rec.Outcome = domain.FetchOutcome(outcome)
		rec.Duration = time.Duration(durationUs) * time.Microsecond
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// DiscardJournal is used when the journal is disabled.
type DiscardJournal struct{}

func (DiscardJournal) Record(context.Context, *domain.FetchRecord) error { return nil }

func (DiscardJournal) Recent(context.Context, int) ([]*domain.FetchRecord, error) {
	return []*domain.FetchRecord{}, nil
}
