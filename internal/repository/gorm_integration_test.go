//go:build integration

package repository_test

// Runs the GORM repositories against a real Postgres.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupRepos(t *testing.T) repository.Repositories {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("bebidas_test"),
		tcPostgres.WithUsername("bebidas"),
		tcPostgres.WithPassword("bebidas"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return repository.NewGormRepositories(db)
}

func TestGorm_Products(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	p := &model.Product{Name: "Cerveja Lata", Barcode: "7896000000039",
		PurchasePrice: decimal.RequireFromString("2.50"), SellingPrice: decimal.RequireFromString("4.50")}
	require.NoError(t, repos.Products.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	dup := &model.Product{Name: "Outra", Barcode: p.Barcode, PurchasePrice: decimal.Zero, SellingPrice: decimal.Zero}
	assert.ErrorIs(t, repos.Products.Create(ctx, dup), repository.ErrDuplicate)

	got, err := repos.Products.FindByBarcode(ctx, p.Barcode)
	require.NoError(t, err)
	assert.True(t, got.SellingPrice.Equal(decimal.RequireFromString("4.5")))

	_, err = repos.Products.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	items, total, err := repos.Products.List(ctx, repository.ProductQuery{Search: "cerveja", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)
}

func TestGorm_SearchTreatsWildcardsLiterally(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	for _, p := range []*model.Product{
		{Name: "Água 500ml", Barcode: "500", PurchasePrice: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(2)},
		{Name: "Vodka 50% vol", Barcode: "501", PurchasePrice: decimal.NewFromInt(20), SellingPrice: decimal.NewFromInt(40)},
		{Name: "Suco_Uva", Barcode: "502", PurchasePrice: decimal.NewFromInt(3), SellingPrice: decimal.NewFromInt(6)},
		{Name: "Suco Laranja", Barcode: "503", PurchasePrice: decimal.NewFromInt(3), SellingPrice: decimal.NewFromInt(6)},
	} {
		require.NoError(t, repos.Products.Create(ctx, p))
	}

	items, total, err := repos.Products.List(ctx, repository.ProductQuery{Search: "50%"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Vodka 50% vol", items[0].Name)

	items, total, err = repos.Products.List(ctx, repository.ProductQuery{Search: "suco_"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Suco_Uva", items[0].Name)
}

func TestGorm_InventoryUpsertAndDecrement(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	p := &model.Product{Name: "Água", Barcode: "111", PurchasePrice: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(2)}
	require.NoError(t, repos.Products.Create(ctx, p))

	first, err := repos.Inventory.Upsert(ctx, &model.InventoryRecord{ProductID: p.ID, CurrentQuantity: 3, MinQuantity: 1, MaxQuantity: 10})
	require.NoError(t, err)
	second, err := repos.Inventory.Upsert(ctx, &model.InventoryRecord{ProductID: p.ID, CurrentQuantity: 5, MinQuantity: 2, MaxQuantity: 10})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.CurrentQuantity)

	db := repos.Inventory.DB()
	var found bool
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = repos.Inventory.DecrementTx(tx, p.ID, 7)
		return err
	}))
	assert.True(t, found)

	rec, err := repos.Inventory.FindByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, rec.CurrentQuantity)

	found, err = repos.Inventory.DecrementTx(db, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGorm_SalesKeepItemOrder(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	sale := &model.Sale{
		TotalDiscount: decimal.NewFromInt(1),
		Total:         decimal.NewFromInt(11),
		PaymentMethod: model.PaymentPix,
		SellerName:    "ana",
	}
	for i, id := range ids {
		sale.Items = append(sale.Items, model.SaleItem{Position: i, ProductID: id, Quantity: i + 1, Price: decimal.NewFromInt(2)})
	}
	require.NoError(t, repos.Sales.DB().Transaction(func(tx *gorm.DB) error {
		return repos.Sales.CreateTx(ctx, tx, sale)
	}))

	got, err := repos.Sales.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	for i, item := range got.Items {
		assert.Equal(t, ids[i], item.ProductID)
	}
	assert.True(t, got.TotalDiscount.Equal(decimal.NewFromInt(1)))

	from := time.Now().Add(-time.Hour)
	list, total, err := repos.Sales.List(ctx, repository.SaleQuery{From: &from, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, sale.ID, list[0].ID)

	since, err := repos.Sales.ListSince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, since)
}
