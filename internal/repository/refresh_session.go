package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/recordhub/backend/internal/db"
	"github.com/recordhub/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type refreshSessionRepository struct {
	db *sqlx.DB
}

func newRefreshSessionRepository(db *sqlx.DB) *refreshSessionRepository {
	return &refreshSessionRepository{
		db: db,
	}
}

const insertRefreshSessionQuery = `
	INSERT INTO refresh_session (id, user_id, token_hash, user_agent, ip_address, created_at, expires_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?)
	`

func (r *refreshSessionRepository) Create(ctx context.Context, session *domain.RefreshSession) error {
	_, err := r.db.ExecContext(ctx, insertRefreshSessionQuery,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert refresh session: %w", err)
	}

	return nil
}

func (r *refreshSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshSession, error) {
	const query = `
	SELECT id, user_id, token_hash, user_agent, ip_address, created_at, expires_at
	FROM refresh_session WHERE token_hash = ?;
	`
	var session domain.RefreshSession
	if err := r.db.GetContext(ctx, &session, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select refresh session by token hash failed: %w", err)
	}

	return &session, nil
}

func (r *refreshSessionRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `DELETE FROM refresh_session WHERE id = uuid_to_bin(?);`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete refresh session by id failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected failed: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *refreshSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	const query = `DELETE FROM refresh_session WHERE token_hash = ?;`

	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return 0, fmt.Errorf("delete refresh session by token hash failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected failed: %w", err)
	}

	return rowsAffected, nil
}

func (r *refreshSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `DELETE FROM refresh_session WHERE user_id = uuid_to_bin(?);`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh sessions by user id failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected failed: %w", err)
	}

	return rowsAffected, nil
}

func (r *refreshSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM refresh_session WHERE expires_at < ?;`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh sessions failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected failed: %w", err)
	}

	return rowsAffected, nil
}

func (r *refreshSessionRepository) Replace(ctx context.Context, next *domain.RefreshSession, oldID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotate transaction failed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, insertRefreshSessionQuery,
		next.ID,
		next.UserID,
		next.TokenHash,
		next.UserAgent,
		next.IPAddress,
		next.CreatedAt,
		next.ExpiresAt,
	); err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert rotated refresh session: %w", err)
	}

	// Zero rows affected means the old session lost a race to a concurrent
	// rotation or logout; the new row must still commit.
	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_session WHERE id = uuid_to_bin(?);`, oldID); err != nil {
		return fmt.Errorf("db delete rotated refresh session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rotate transaction failed: %w", err)
	}

	return nil
}
