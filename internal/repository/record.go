package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recordhub/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type recordRepository struct {
	db *sqlx.DB
}

func newRecordRepository(db *sqlx.DB) *recordRepository {
	return &recordRepository{
		db: db,
	}
}

func (r *recordRepository) Create(ctx context.Context, record *domain.Record) error {
	const query = `
	INSERT INTO record (id, user_id, title, content)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?);
	`

	if _, err := r.db.ExecContext(ctx, query, record.ID, record.UserID, record.Title, record.Content); err != nil {
		return fmt.Errorf("db insert record: %w", err)
	}

	return nil
}

func (r *recordRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Record, error) {
	const query = `
	SELECT id, user_id, title, content, created_at, updated_at
	FROM record WHERE user_id = uuid_to_bin(?) ORDER BY created_at DESC;
	`
	records := make([]domain.Record, 0)
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("select records by user failed: %w", err)
	}

	return records, nil
}

func (r *recordRepository) GetOne(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Record, error) {
	const query = `
	SELECT id, user_id, title, content, created_at, updated_at
	FROM record WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?);
	`
	var record domain.Record
	if err := r.db.GetContext(ctx, &record, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select record by id failed: %w", err)
	}

	return &record, nil
}

func (r *recordRepository) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, update RecordUpdate) (*domain.Record, error) {
	existing, err := r.GetOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		existing.Title = *update.Title
	}
	if update.Content != nil {
		existing.Content = update.Content
	}

	const query = `
	UPDATE record SET title = ?, content = ? WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?);
	`
	if _, err := r.db.ExecContext(ctx, query, existing.Title, existing.Content, id, userID); err != nil {
		return nil, fmt.Errorf("update record failed: %w", err)
	}

	return r.GetOne(ctx, id, userID)
}

func (r *recordRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	const query = `DELETE FROM record WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?);`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete record failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected failed: %w", err)
	}

	return rowsAffected > 0, nil
}
