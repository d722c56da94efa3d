package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/common"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/dbx"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

const pgUniqueViolation = "23505"

// PostgresStore implements UserStore on top of database/sql with the pgx
// stdlib driver. Every statement runs under its own deadline so a stuck
// query cannot hold a worker past the configured statement timeout.
type PostgresStore struct {
	db          dbx.DBTX
	stmtTimeout time.Duration
}

func NewPostgresStore(db dbx.DBTX, stmtTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, stmtTimeout: stmtTimeout}
}

func (s *PostgresStore) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.stmtTimeout)
}

func (s *PostgresStore) Get(ctx context.Context, userName string) (*models.StoredUser, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	query :=
		`SELECT user_name, password FROM site_users
		 WHERE user_name = $1
		 `

	user := &models.StoredUser{}
	err := s.db.QueryRowContext(ctx, query, userName).Scan(&user.UserName, &user.CredentialDigest)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (s *PostgresStore) GetAll(ctx context.Context) ([]models.StoredUser, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	query :=
		`SELECT user_name, password FROM site_users
		 ORDER BY user_name
		 `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []models.StoredUser{}
	for rows.Next() {
		var user models.StoredUser
		if err := rows.Scan(&user.UserName, &user.CredentialDigest); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

func (s *PostgresStore) Insert(ctx context.Context, user *models.StoredUser) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	query :=
		`INSERT INTO site_users (user_name, password)
		 VALUES ($1, $2)
		 `

	_, err := s.db.ExecContext(ctx, query, user.UserName, user.CredentialDigest)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.StoredUser) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	query :=
		`UPDATE site_users SET password = $2
		 WHERE user_name = $1
		 `

	res, err := s.db.ExecContext(ctx, query, user.UserName, user.CredentialDigest)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userName string) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	query :=
		`DELETE FROM site_users
		 WHERE user_name = $1
		 `

	res, err := s.db.ExecContext(ctx, query, userName)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
