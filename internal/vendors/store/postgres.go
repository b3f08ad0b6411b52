package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// PostgresStore persists vendors and payouts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const vendorColumns = `id, name, email, status, commission_rate, country, created_at, updated_at`

// Create inserts the vendor. The unique index on lower(email) makes the
// insert a no-op for taken emails, reported as sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, v *models.Vendor) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vendors (`+vendorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING
	`, uuid.UUID(v.ID), v.Name, v.Email, string(v.Status), v.CommissionRate, v.Country, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert vendor rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, uuid.UUID(vendorID))
	v, err := scanVendor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, vendorID id.VendorID, status models.Status, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE vendors SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(vendorID), string(status), at)
	if err != nil {
		return fmt.Errorf("update vendor status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f models.ListFilter) ([]*models.Vendor, int, error) {
	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vendors`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM vendors%s ORDER BY lower(name), id LIMIT $%d OFFSET $%d`,
		vendorColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Vendor, 0, f.Limit)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan vendor: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate vendors: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) CreatePayout(ctx context.Context, p *models.Payout) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payouts (id, vendor_id, amount, currency, period_start, period_end, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(p.ID), uuid.UUID(p.VendorID), p.Amount, p.Currency, p.PeriodStart, p.PeriodEnd, string(p.Status), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPayouts(ctx context.Context, vendorID id.VendorID, offset, limit int) ([]*models.Payout, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payouts WHERE vendor_id = $1`, uuid.UUID(vendorID)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payouts: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vendor_id, amount, currency, period_start, period_end, status, created_at
		FROM payouts WHERE vendor_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, uuid.UUID(vendorID), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Payout, 0, limit)
	for rows.Next() {
		var (
			p                models.Payout
			payoutID, vendID uuid.UUID
			currency, status string
		)
		if err := rows.Scan(&payoutID, &vendID, &p.Amount, &currency, &p.PeriodStart, &p.PeriodEnd, &status, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan payout: %w", err)
		}
		p.ID = id.PayoutID(payoutID)
		p.VendorID = id.VendorID(vendID)
		p.Currency = strings.TrimSpace(currency)
		p.Status = models.PayoutStatus(status)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payouts: %w", err)
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var (
		v        models.Vendor
		vendorID uuid.UUID
		status   string
	)
	if err := row.Scan(&vendorID, &v.Name, &v.Email, &status, &v.CommissionRate, &v.Country, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.ID = id.VendorID(vendorID)
	v.Status = models.Status(status)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return &v, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
