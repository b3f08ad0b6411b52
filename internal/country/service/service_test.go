package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

func TestGet(t *testing.T) {
	svc := New()
	ctx := context.Background()

	de, err := svc.Get(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, "DE", de.Code)
	assert.Equal(t, "Germany", de.Name)
	assert.Equal(t, "EUR", de.Currency)
	assert.Equal(t, "Europe", de.Region)

	jp, err := svc.Get(ctx, "JP")
	require.NoError(t, err)
	assert.Equal(t, "JPY", jp.Currency)
	assert.Equal(t, "Asia", jp.Region)

	_, err = svc.Get(ctx, "QQ")
	e, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, dErrors.CodeNotFound, e.Code)
}

func TestGet_LocalizedName(t *testing.T) {
	ctx := requestcontext.WithLanguage(context.Background(), "de")
	c, err := New().Get(ctx, "DE")
	require.NoError(t, err)
	assert.Equal(t, "Deutschland", c.Name)
}

func TestList(t *testing.T) {
	svc := New()
	ctx := context.Background()

	all, err := svc.List(ctx, "", 0, 50)
	require.NoError(t, err)
	assert.Greater(t, all.Total, 240)
	assert.Len(t, all.Items, 50)
	for i := 1; i < len(all.Items); i++ {
		assert.NotEqual(t, all.Items[i-1].Code, all.Items[i].Code)
	}

	page, err := svc.List(ctx, "united", 0, 10)
	require.NoError(t, err)
	codes := make([]string, len(page.Items))
	for i, c := range page.Items {
		codes[i] = c.Code
	}
	assert.Contains(t, codes, "GB")
	assert.Contains(t, codes, "US")
	assert.Contains(t, codes, "AE")

	byCode, err := svc.List(ctx, "fr", 0, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, byCode.Items)

	beyond, err := svc.List(ctx, "", 1000, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
}
