package service_test

import (
	"context"
	"sync"
	"testing"

	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"
	"bebidaspos/internal/repository/memory"
	"bebidaspos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func newRepos() (*memory.Store, repository.Repositories) {
	store := memory.NewStore()
	return store, store.Repositories()
}

// seedProduct creates a product and, when stock is non-negative, its
// inventory record with min 0 and max 100.
func seedProduct(t *testing.T, repos repository.Repositories, name, barcode string, price float64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:            uuid.New(),
		Name:          name,
		Barcode:       barcode,
		PurchasePrice: decimal.NewFromFloat(price).Div(decimal.NewFromInt(2)),
		SellingPrice:  decimal.NewFromFloat(price),
	}
	require.NoError(t, repos.Products.Create(context.Background(), p))
	if stock >= 0 {
		setStock(t, repos, p.ID, stock, 0, 100)
	}
	return p
}

func setStock(t *testing.T, repos repository.Repositories, productID uuid.UUID, current, min, max int) {
	t.Helper()
	_, err := repos.Inventory.Upsert(context.Background(), &model.InventoryRecord{
		ProductID:       productID,
		CurrentQuantity: current,
		MinQuantity:     min,
		MaxQuantity:     max,
	})
	require.NoError(t, err)
}

func stockOf(t *testing.T, repos repository.Repositories, productID uuid.UUID) int {
	t.Helper()
	rec, err := repos.Inventory.FindByProductID(context.Background(), productID)
	require.NoError(t, err)
	return rec.CurrentQuantity
}

// recordingQueue captures receipt jobs instead of pushing them to Redis.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []worker.ReceiptJobPayload
	err  error
}

func (q *recordingQueue) EnqueueReceipt(_ context.Context, payload worker.ReceiptJobPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, payload)
	return q.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
