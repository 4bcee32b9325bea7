package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// The full record lives in JSONB; train_id and status are duplicated into
// columns for filtering.

func (s *PostgresStore) UpsertTrain(ctx context.Context, train *Train) error {
	train.UpdatedAt = time.Now().UTC()
	record, err := json.Marshal(train)
	if err != nil {
		return fmt.Errorf("marshal train %s: %w", train.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO depot_trains (train_id, status, record, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (train_id) DO UPDATE SET
			status = EXCLUDED.status,
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at`,
		train.ID, string(train.Status), record, train.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetTrain(ctx context.Context, id string) (*Train, error) {
	var record []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM depot_trains WHERE train_id = $1`, id).Scan(&record)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := &Train{}
	if err := json.Unmarshal(record, t); err != nil {
		return nil, fmt.Errorf("decode train %s: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) ListTrains(ctx context.Context, filter TrainFilter) ([]*Train, error) {
	query := `SELECT record FROM depot_trains WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}

	query += " ORDER BY train_id ASC"

	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trains []*Train
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		t := &Train{}
		if err := json.Unmarshal(record, t); err != nil {
			return nil, fmt.Errorf("decode train: %w", err)
		}
		trains = append(trains, t)
	}
	return trains, rows.Err()
}

func (s *PostgresStore) DeleteTrain(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM depot_trains WHERE train_id = $1`, id)
	return err
}

func (s *PostgresStore) ReplaceFleet(ctx context.Context, trains []*Train) error {
	if err := ValidateFleet(trains); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM depot_trains`); err != nil {
		return fmt.Errorf("clear fleet: %w", err)
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, t := range trains {
		t.UpdatedAt = now
		record, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal train %s: %w", t.ID, err)
		}
		batch.Queue(`INSERT INTO depot_trains (train_id, status, record, updated_at) VALUES ($1, $2, $3, $4)`,
			t.ID, string(t.Status), record, now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert fleet: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetFleetStats(ctx context.Context) (*FleetStats, error) {
	trains, err := s.ListTrains(ctx, TrainFilter{})
	if err != nil {
		return nil, err
	}
	return computeStats(trains), nil
}

const planColumns = `plan_id, preset, weights, fleet_size, alert_count, report, scores, created_at`

func (s *PostgresStore) CreatePlan(ctx context.Context, plan *PlanRecord) error {
	weightsJSON, _ := json.Marshal(plan.Weights)

	return s.pool.QueryRow(ctx, `
		INSERT INTO induction_plans (preset, weights, fleet_size, alert_count, report, scores)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING plan_id, created_at`,
		plan.Preset, weightsJSON, plan.FleetSize, plan.AlertCount, []byte(plan.Report), []byte(plan.Scores),
	).Scan(&plan.ID, &plan.CreatedAt)
}

func (s *PostgresStore) GetPlan(ctx context.Context, id uuid.UUID) (*PlanRecord, error) {
	p, err := scanPlan(s.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM induction_plans WHERE plan_id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, filter PlanFilter) ([]*PlanRecord, error) {
	query := `SELECT ` + planColumns + ` FROM induction_plans WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Preset != "" {
		n++
		query += fmt.Sprintf(" AND preset = $%d", n)
		args = append(args, filter.Preset)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*PlanRecord
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func scanPlan(row pgx.Row) (*PlanRecord, error) {
	p := &PlanRecord{}
	var weightsJSON, reportJSON, scoresJSON []byte
	if err := row.Scan(&p.ID, &p.Preset, &weightsJSON, &p.FleetSize, &p.AlertCount, &reportJSON, &scoresJSON, &p.CreatedAt); err != nil {
		return nil, err
	}
	if weightsJSON != nil {
		_ = json.Unmarshal(weightsJSON, &p.Weights)
	}
	p.Report = reportJSON
	p.Scores = scoresJSON
	return p, nil
}
