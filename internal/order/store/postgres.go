package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"storefront/internal/order/models"
	vendormodels "storefront/internal/vendors/models"
	id "storefront/pkg/domain"
)

// PostgresStore persists orders in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, customer_id, vendor_id, total, currency, status, created_at`

func (s *PostgresStore) Create(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(o.ID), uuid.UUID(o.CustomerID), uuid.UUID(o.VendorID), o.Total, o.Currency, string(o.Status), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f models.ListFilter) ([]*models.Order, int, error) {
	var where []string
	var args []any
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if f.VendorID != nil {
		args = append(args, uuid.UUID(*f.VendorID))
		where = append(where, fmt.Sprintf("vendor_id = $%d", len(args)))
	}
	where, args = rangeClause(where, args, f.From, f.To)
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	// LIMIT NULL is LIMIT ALL.
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	args = append(args, limit, max(f.Offset, 0))
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM orders%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*models.Order
	for rows.Next() {
		var (
			o                         models.Order
			orderID, customer, vendor uuid.UUID
			currency, status          string
		)
		if err := rows.Scan(&orderID, &customer, &vendor, &o.Total, &currency, &status, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		o.ID = id.OrderID(orderID)
		o.CustomerID = id.UserID(customer)
		o.VendorID = id.VendorID(vendor)
		o.Currency = strings.TrimSpace(currency)
		o.Status = models.Status(status)
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) VendorTotals(ctx context.Context, vendorID id.VendorID, from, to *time.Time) (vendormodels.SalesTotals, error) {
	where := []string{"vendor_id = $1", "status <> $2"}
	args := []any{uuid.UUID(vendorID), string(models.StatusCancelled)}
	where, args = rangeClause(where, args, from, to)

	var totals vendormodels.SalesTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total), 0)::float8 FROM orders WHERE `+strings.Join(where, " AND "),
		args...).Scan(&totals.Orders, &totals.Gross)
	if err != nil {
		return vendormodels.SalesTotals{}, fmt.Errorf("aggregate vendor orders: %w", err)
	}
	return totals, nil
}

func rangeClause(where []string, args []any, from, to *time.Time) ([]string, []any) {
	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if end := models.InclusiveEnd(to); end != nil {
		args = append(args, *end)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return where, args
}
