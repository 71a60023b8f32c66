//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bebidaspos/internal/config"
	"bebidaspos/internal/dto"
	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"
	"bebidaspos/internal/router"
	"bebidaspos/internal/service"
	"bebidaspos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// setupIntegrationEnv wires the router exactly like cmd/server does for
// STORE_DRIVER=postgres, including the receipt worker pool.
func setupIntegrationEnv(t *testing.T) (*testEnv, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("bebidas_test"),
		tcPostgres.WithUsername("bebidas"),
		tcPostgres.WithPassword("bebidas"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	receipts := t.TempDir()
	cfg := &config.Config{
		Env:                "test",
		StoreDriver:        config.StorePostgres,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		WorkerPoolSize:     1,
		StoreName:          "Depósito E2E",
		ReceiptStoragePath: receipts,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	repos := repository.NewGormRepositories(db)

	auth := service.NewAuthService(repos.Users, cfg)
	_, err = auth.CreateUser(ctx, "admin", "admin", model.RoleAdmin)
	require.NoError(t, err)
	_, err = auth.CreateUser(ctx, "funcionario", "123456", model.RoleEmployee)
	require.NoError(t, err)

	pool := worker.NewPool(rdb, map[string]worker.Processor{
		worker.QueueReceipt: worker.NewReceiptWorker(repos.Sales, repos.Products, worker.NewDispatcher(rdb), cfg.StoreName, receipts),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)
	t.Cleanup(func() {
		cancel()
		pool.Wait()
		_ = rdb.Close()
	})

	env := &testEnv{engine: router.New(cfg, repos, db, rdb)}
	env.admin = env.login(t, "admin", "admin")
	env.employee = env.login(t, "funcionario", "123456")
	return env, receipts
}

func TestE2E_SaleProducesReceipt(t *testing.T) {
	env, receipts := setupIntegrationEnv(t)
	p := env.createProduct(t, "Refrigerante 2L", "7894900011517", 9, intp(10))

	w := env.do(t, http.MethodPost, "/v1/pos/scan", dto.ScanRequest{Barcode: p.Barcode}, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPatch, "/v1/pos/items/"+p.ID, map[string]any{"quantity": "3"}, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/v1/pos/checkout", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/v1/pos/checkout/confirm", nil, env.employee)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sale dto.SaleResponse
	decode(t, w, &sale)
	assert.Equal(t, "27", sale.Total.String())
	assert.Equal(t, "cash", sale.PaymentMethod)

	w = env.do(t, http.MethodGet, "/v1/inventario/"+p.ID, nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var inv dto.InventoryResponse
	decode(t, w, &inv)
	assert.Equal(t, 7, inv.CurrentQuantity)

	pdf := filepath.Join(receipts, "receipt_"+sale.ID+".pdf")
	require.Eventually(t, func() bool {
		_, err := os.Stat(pdf)
		return err == nil
	}, 15*time.Second, 200*time.Millisecond, "receipt PDF not generated")
}

func TestE2E_PriceLookupUsesCache(t *testing.T) {
	env, _ := setupIntegrationEnv(t)
	p := env.createProduct(t, "Água 500ml", "7891000000011", 2.5, nil)

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodGet, "/v1/precio/"+p.Barcode, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodPut, "/v1/productos/"+p.ID, map[string]any{
		"name": p.Name, "barcode": p.Barcode, "purchasePrice": 1, "sellingPrice": 3,
	}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The update must evict the cached price.
	w = env.do(t, http.MethodGet, "/v1/precio/"+p.Barcode, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"3"`)
}
