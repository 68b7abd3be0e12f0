package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ostanin/volback/pkg/domain"
)

const (
	runInsertQuery = `
		INSERT INTO runs (
			run_date, status,
			volume_count, bundle_size, remote_key, error,
			created_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	runUpdateQuery = `
		UPDATE runs SET
			run_date = ?, status = ?,
			volume_count = ?, bundle_size = ?, remote_key = ?, error = ?,
			created_at = ?, finished_at = ?
		WHERE id = ?
	`

	runSelectLastSuccessful = `
		SELECT
			id,
			run_date, status,
			volume_count, bundle_size, remote_key, error,
			created_at, finished_at
		FROM runs
		WHERE status = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
)

type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

func (r *RunRepository) Create(ctx context.Context, run domain.Run) (domain.Run, error) {
	stmt, err := r.db.PrepareContext(ctx, runInsertQuery)
	if err != nil {
		return run, err
	}

	res, err := stmt.ExecContext(
		ctx,
		run.RunDate, run.Status,
		run.VolumeCount, run.BundleSize, run.RemoteKey, run.Error,
		run.CreatedAt, run.FinishedAt,
	)
	if err != nil {
		return run, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return run, err
	}

	run.Id = id

	return run, nil
}

func (r *RunRepository) Update(ctx context.Context, run domain.Run) error {
	stmt, err := r.db.PrepareContext(ctx, runUpdateQuery)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(
		ctx,
		run.RunDate, run.Status,
		run.VolumeCount, run.BundleSize, run.RemoteKey, run.Error,
		run.CreatedAt, run.FinishedAt,
		run.Id,
	)

	return err
}

func (r *RunRepository) FindLastSuccessful(ctx context.Context) (domain.Run, error) {
	var run domain.Run

	err := r.db.GetContext(ctx, &run, runSelectLastSuccessful, domain.RunStatusSuccess)

	return run, err
}
