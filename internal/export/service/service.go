// Package service flattens orders, products and loyalty customers into
// tables and renders them with the requested writer.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"storefront/internal/export/models"
	"storefront/internal/export/writer"
	loyaltymodels "storefront/internal/loyalty/models"
	ordermodels "storefront/internal/order/models"
	"storefront/internal/platform/metrics"
	searchmodels "storefront/internal/search/models"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type OrderSource interface {
	Export(ctx context.Context, from, to *time.Time) ([]*ordermodels.Order, error)
}

type ProductSource interface {
	Products(ctx context.Context) ([]searchmodels.Product, error)
}

type CustomerSource interface {
	Customers(ctx context.Context) ([]loyaltymodels.AccountSummary, error)
}

// Request selects what to export. From and To only apply to orders.
type Request struct {
	Dataset models.Dataset
	Format  models.Format
	From    *time.Time
	To      *time.Time
}

type Service struct {
	orders    OrderSource
	products  ProductSource
	customers CustomerSource
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(orders OrderSource, products ProductSource, customers CustomerSource, opts ...Option) *Service {
	s := &Service{orders: orders, products: products, customers: customers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export renders the dataset. The file is named <dataset>-<date>.<ext>
// after the request date.
func (s *Service) Export(ctx context.Context, req Request) (*models.File, error) {
	table, err := s.table(ctx, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writer.For(req.Format).Write(&buf, table); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render export")
	}
	s.metrics.IncrementExport(string(req.Dataset), string(req.Format))
	s.logger.InfoContext(ctx, "export generated",
		"request_id", requestcontext.RequestID(ctx),
		"dataset", string(req.Dataset),
		"format", string(req.Format),
		"rows", len(table.Rows),
		"bytes", buf.Len(),
	)
	return &models.File{
		Name:        fmt.Sprintf("%s-%s.%s", req.Dataset, requestcontext.Now(ctx).Format(time.DateOnly), req.Format.Extension()),
		ContentType: req.Format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func (s *Service) table(ctx context.Context, req Request) (*models.Table, error) {
	switch req.Dataset {
	case models.DatasetOrders:
		orders, err := s.orders.Export(ctx, req.From, req.To)
		if err != nil {
			return nil, err
		}
		return ordersTable(orders), nil
	case models.DatasetProducts:
		products, err := s.products.Products(ctx)
		if err != nil {
			return nil, err
		}
		return productsTable(products), nil
	case models.DatasetCustomers:
		customers, err := s.customers.Customers(ctx)
		if err != nil {
			return nil, err
		}
		return customersTable(customers), nil
	default:
		return nil, dErrors.New(dErrors.CodeNotFound, "Unknown export dataset")
	}
}

func ordersTable(orders []*ordermodels.Order) *models.Table {
	t := &models.Table{
		Title:   "Orders",
		Headers: []string{"ID", "Customer ID", "Vendor ID", "Total", "Currency", "Status", "Created At"},
		Rows:    make([][]string, len(orders)),
	}
	for i, o := range orders {
		t.Rows[i] = []string{
			o.ID.String(),
			o.CustomerID.String(),
			o.VendorID.String(),
			money(o.Total),
			o.Currency,
			string(o.Status),
			o.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return t
}

func productsTable(products []searchmodels.Product) *models.Table {
	t := &models.Table{
		Title:   "Products",
		Headers: []string{"ID", "Name", "Category", "Brand", "Price", "Rating", "In Stock", "Tags"},
		Rows:    make([][]string, len(products)),
	}
	for i, p := range products {
		t.Rows[i] = []string{
			p.ID.String(),
			p.Name,
			p.Category,
			p.Brand,
			money(p.Price),
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
			strconv.FormatBool(p.InStock),
			strings.Join(p.Tags, ";"),
		}
	}
	return t
}

func customersTable(customers []loyaltymodels.AccountSummary) *models.Table {
	t := &models.Table{
		Title:   "Customers",
		Headers: []string{"User ID", "Tier", "Balance", "Lifetime Points", "Points To Next Tier", "Member Since"},
		Rows:    make([][]string, len(customers)),
	}
	for i, c := range customers {
		t.Rows[i] = []string{
			c.Account.UserID.String(),
			c.Tier.Name,
			strconv.FormatInt(c.Account.Balance, 10),
			strconv.FormatInt(c.Account.LifetimePoints, 10),
			strconv.FormatInt(c.PointsToNextTier, 10),
			c.Account.CreatedAt.UTC().Format(time.DateOnly),
		}
	}
	return t
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
