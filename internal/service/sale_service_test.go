package service_test

import (
	"context"
	"testing"
	"time"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func TestSaleService_ListNewestFirstWithDateRange(t *testing.T) {
	_, repos := newRepos()
	svc := service.NewSaleService(repos.Sales)
	ctx := context.Background()
	p := seedProduct(t, repos, "Cerveja Lata", "7895000000018", 4, -1)

	day := func(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.Local) }
	recordSale(t, repos, day(1, 10), item(p, 1))
	recordSale(t, repos, day(2, 23), item(p, 2))
	recordSale(t, repos, day(3, 9), item(p, 3))
	recordSale(t, repos, day(4, 0), item(p, 4))

	all, err := svc.List(ctx, dto.SaleFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 4, all.Total)
	assert.Equal(t, 4, all.Data[0].Items[0].Quantity)
	assert.Equal(t, 1, all.Data[3].Items[0].Quantity)

	// Both ends inclusive by calendar day.
	ranged, err := svc.List(ctx, dto.SaleFilter{From: "2025-03-02", To: "2025-03-03", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 2, ranged.Total)
	assert.Equal(t, 3, ranged.Data[0].Items[0].Quantity)
	assert.Equal(t, 2, ranged.Data[1].Items[0].Quantity)

	paged, err := svc.List(ctx, dto.SaleFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, paged.Total)
	require.Len(t, paged.Data, 1)
	assert.Equal(t, 1, paged.Data[0].Items[0].Quantity)
}

func TestSaleService_Get(t *testing.T) {
	_, repos := newRepos()
	svc := service.NewSaleService(repos.Sales)
	ctx := context.Background()

	_, err := svc.Get(ctx, uuid.New())
	require.ErrorIs(t, err, service.ErrSaleNotFound)

	p := seedProduct(t, repos, "Água", "7895000000025", 2, -1)
	recordSale(t, repos, time.Now(), item(p, 2))
	list, err := svc.List(ctx, dto.SaleFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)

	got, err := svc.Get(ctx, uuid.MustParse(list.Data[0].ID))
	require.NoError(t, err)
	assert.Equal(t, "4", got.Total.String())
	assert.Equal(t, "ana", got.SellerName)
}
