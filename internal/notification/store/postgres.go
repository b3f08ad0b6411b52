package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/internal/notification/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// PostgresStore persists notifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const notificationColumns = `id, user_id, type, title, message, read, created_at, read_at`

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
		n.ID.String(), uuid.UUID(n.UserID), string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt, n.ReadAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, notificationID id.ObjectID) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, notificationID.String())
	n, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, f models.ListFilter) ([]*models.Notification, int, error) {
	clause := ` WHERE user_id = $1`
	if f.UnreadOnly {
		clause += ` AND NOT read`
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+clause, uuid.UUID(f.UserID)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications`+clause+` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		uuid.UUID(f.UserID), limit, max(f.Offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.ObjectID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE, read_at = COALESCE(read_at, $2) WHERE id = $1`,
		notificationID.String(), at)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, userID id.UserID, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $2 WHERE user_id = $1 AND NOT read`,
		uuid.UUID(userID), at)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count updated notifications: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) PurgeRead(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE read AND read_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged notifications: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Notification, error) {
	var (
		n      models.Notification
		rawID  string
		userID uuid.UUID
		typ    string
		readAt sql.NullTime
	)
	if err := row.Scan(&rawID, &userID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt, &readAt); err != nil {
		return nil, err
	}
	n.ID = id.ObjectID(rawID)
	n.UserID = id.UserID(userID)
	n.Type = models.Type(typ)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}
