package query

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "storefront/pkg/domain-errors"
)

func parse(raw string) *Parser {
	values, _ := url.ParseQuery(raw)
	return FromValues(values)
}

func firstMessage(t *testing.T, err error) string {
	t.Helper()
	de, ok := dErrors.As(err)
	require.True(t, ok, "expected domain error, got %v", err)
	require.Equal(t, dErrors.CodeValidation, de.Code)
	return de.Message
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantPage  int
		wantLimit int
		wantErr   string
	}{
		{"defaults", "", 1, 10, ""},
		{"explicit", "page=3&limit=25", 3, 25, ""},
		{"page zero", "page=0", 1, 10, "Page must be greater than 0"},
		{"negative page", "page=-4", 1, 10, "Page must be greater than 0"},
		{"limit zero", "limit=0", 1, 10, "Limit must be greater than 0"},
		{"limit clamped", "limit=500", 1, 100, ""},
		{"non numeric page", "page=two", 1, 10, "Page must be an integer"},
		{"non numeric limit", "limit=ten", 1, 10, "Limit must be an integer"},
		{"far page accepted", "page=100000000000000000&limit=100", 100000000000000000, 100, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parse(tt.raw)
			page := p.Pagination(10, 100)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
			if tt.wantErr == "" {
				assert.NoError(t, p.Err())
				return
			}
			assert.Equal(t, tt.wantErr, firstMessage(t, p.Err()))
		})
	}
}

func TestPagination_FarPageOffsetDoesNotOverflow(t *testing.T) {
	page := parse("page=100000000000000000&limit=100").Pagination(10, 100)
	assert.Equal(t, math.MaxInt, page.Offset())
	start, end := page.Window(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}

func TestPagination_ResourceMaxIsRespected(t *testing.T) {
	p := parse("limit=40")
	assert.Equal(t, 20, p.Pagination(5, 20).Limit)
}

func TestDate(t *testing.T) {
	p := parse("startDate=2026-01-15&endDate=2026-02-01T10:30:00Z&bad=15/01/2026")

	start := p.Date("startDate", "Start date")
	end := p.Date("endDate", "End date")
	bad := p.Date("bad", "Bad date")

	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *start)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC), *end)
	assert.Nil(t, bad)
	assert.Equal(t, "Bad date must be a valid ISO-8601 date", firstMessage(t, p.Err()))
}

func TestEnum(t *testing.T) {
	p := parse("status=running&order=sideways")

	assert.Equal(t, "running", p.Enum("status", "Status", "", "draft", "running"))
	assert.Equal(t, "desc", p.Enum("order", "Order", "desc", "asc", "desc"))
	assert.Equal(t, "createdAt", p.Enum("sortBy", "Sort field", "createdAt", "createdAt", "name"))
	assert.Equal(t, "Order must be one of: asc, desc", firstMessage(t, p.Err()))
}

func TestNumbersAndBools(t *testing.T) {
	p := parse("minPrice=10.5&maxPrice=abc&inStock=true&flag=maybe&count=7")

	minPrice := p.Float("minPrice", "Minimum price")
	require.NotNil(t, minPrice)
	assert.Equal(t, 10.5, *minPrice)
	assert.Nil(t, p.Float("maxPrice", "Maximum price"))
	assert.Nil(t, p.Float("absent", "Absent"))

	inStock := p.Bool("inStock", "In stock")
	require.NotNil(t, inStock)
	assert.True(t, *inStock)
	assert.Nil(t, p.Bool("flag", "Flag"))
	assert.False(t, p.BoolDefault("missing", "Missing", false))

	assert.Equal(t, 7, p.Int("count", "Count", 1))

	de, ok := dErrors.As(p.Err())
	require.True(t, ok)
	require.Len(t, de.Fields, 2)
	assert.Equal(t, "Maximum price must be a number", de.Fields[0].Message)
	assert.Equal(t, "Flag must be true or false", de.Fields[1].Message)
}

func TestFloat_RejectsNonFiniteValues(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "1e400"} {
		t.Run(raw, func(t *testing.T) {
			p := FromValues(url.Values{"amount": {raw}})
			assert.Nil(t, p.Float("amount", "Amount"))
			assert.Equal(t, "Amount must be a number", firstMessage(t, p.Err()))
		})
	}

	p := FromValues(url.Values{"amount": {"NaN"}})
	assert.Equal(t, 0.0, p.RequiredFloat("amount", "Amount"))
	assert.Equal(t, "Amount must be a number", firstMessage(t, p.Err()))
}

func TestRequiredFloat(t *testing.T) {
	p := parse("from=USD")
	assert.Equal(t, 0.0, p.RequiredFloat("amount", "Amount"))
	assert.Equal(t, "Amount is required", firstMessage(t, p.Err()))
}

func TestList(t *testing.T) {
	p := parse("brands=acme,%20globex,acme&brands=initech&tags=")
	assert.Equal(t, []string{"acme", "globex", "initech"}, p.List("brands"))
	assert.Nil(t, p.List("tags"))
	assert.Nil(t, p.List("missing"))
}

func TestStringAndHas(t *testing.T) {
	p := parse("q=%20%20lamp%20&blank=%20")
	assert.Equal(t, "lamp", p.String("q", ""))
	assert.Equal(t, "fallback", p.String("blank", "fallback"))
	assert.True(t, p.Has("q"))
	assert.False(t, p.Has("blank"))
}
