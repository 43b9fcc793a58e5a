package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the known-user persistence operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser records a sighting of user. FirstSeen is kept from the first
	// insert; every other column is refreshed. A handle belongs to one user
	// at a time, so any other row holding it is cleared.
	UpsertUser(ctx context.Context, user *KnownUser) error

	// GetUserByID returns nil, nil when the user is unknown.
	GetUserByID(ctx context.Context, userID int64) (*KnownUser, error)

	// GetUserByUsername matches case-insensitively and returns nil, nil when
	// the handle is unknown.
	GetUserByUsername(ctx context.Context, username string) (*KnownUser, error)

	// PruneUsers deletes users last seen before cutoff and returns how many were removed.
	PruneUsers(ctx context.Context, cutoff time.Time) (int64, error)

	// CountUsers returns the number of known users.
	CountUsers(ctx context.Context) (int64, error)

	// RunSQLMaintenance performs VACUUM and refreshes planner statistics.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by a connected sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// normalizeTime keeps stored timestamps in one textual form so that range
// comparisons in SQL stay lexicographically correct.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertUser(ctx context.Context, user *KnownUser) error {
	if user == nil {
		return errors.New("cannot save nil user")
	}
	if user.UserID == 0 {
		return errors.New("user must have a non-zero user_id")
	}

	if user.LastSeen.IsZero() {
		user.LastSeen = time.Now()
	}
	user.LastSeen = normalizeTime(user.LastSeen)
	if user.FirstSeen.IsZero() {
		user.FirstSeen = user.LastSeen
	}
	user.FirstSeen = normalizeTime(user.FirstSeen)
	user.Username = strings.TrimPrefix(user.Username, "@")

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	if user.Username != "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE known_users SET username = '' WHERE username = ? COLLATE NOCASE AND user_id != ?`,
			user.Username, user.UserID)
		if err != nil {
			return fmt.Errorf("failed to release handle %q: %w", user.Username, err)
		}
	}

	query := `
        INSERT INTO known_users (user_id, username, first_name, last_name, is_bot, is_premium, first_seen, last_seen)
        VALUES (:user_id, :username, :first_name, :last_name, :is_bot, :is_premium, :first_seen, :last_seen)
        ON CONFLICT(user_id) DO UPDATE SET
            username   = excluded.username,
            first_name = excluded.first_name,
            last_name  = excluded.last_name,
            is_bot     = excluded.is_bot,
            is_premium = excluded.is_premium,
            last_seen  = MAX(known_users.last_seen, excluded.last_seen);
    `
	if _, err := tx.NamedExecContext(ctx, query, user); err != nil {
		s.logger.ErrorContext(ctx, "Error saving known user", "user_id", user.UserID, "error", err)
		return fmt.Errorf("failed to save user %d: %w", user.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Known user saved", "user_id", user.UserID, "username", user.Username)
	return nil
}

func (s *sqlxStore) getUser(ctx context.Context, query string, arg any) (*KnownUser, error) {
	var user KnownUser
	err := s.db.GetContext(ctx, &user, query, arg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &user, nil
}

func (s *sqlxStore) GetUserByID(ctx context.Context, userID int64) (*KnownUser, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}

	user, err := s.getUser(ctx, `
        SELECT user_id, username, first_name, last_name, is_bot, is_premium, first_seen, last_seen
        FROM known_users WHERE user_id = ?`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting known user by id", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}

func (s *sqlxStore) GetUserByUsername(ctx context.Context, username string) (*KnownUser, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, nil
	}

	user, err := s.getUser(ctx, `
        SELECT user_id, username, first_name, last_name, is_bot, is_premium, first_seen, last_seen
        FROM known_users WHERE username = ? COLLATE NOCASE
        ORDER BY last_seen DESC LIMIT 1`, username)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting known user by username", "username", username, "error", err)
		return nil, fmt.Errorf("failed to get user @%s: %w", username, err)
	}
	return user, nil
}

func (s *sqlxStore) PruneUsers(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM known_users WHERE last_seen < ?`, normalizeTime(cutoff))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning known users", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to prune users: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned users: %w", err)
	}
	return n, nil
}

func (s *sqlxStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM known_users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	// VACUUM cannot run inside a transaction.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		s.logger.WarnContext(ctx, "ANALYZE failed", "error", err)
		return fmt.Errorf("failed to execute ANALYZE: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
