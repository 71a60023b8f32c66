package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bebidaspos/internal/config"
	"bebidaspos/internal/dto"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository/memory"
	"bebidaspos/internal/router"
	"bebidaspos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	engine   *gin.Engine
	admin    string // admin JWT
	employee string // employee JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	repos := memory.NewStore().Repositories()
	auth := service.NewAuthService(repos.Users, cfg)
	ctx := context.Background()
	_, err := auth.CreateUser(ctx, "admin", "admin", model.RoleAdmin)
	require.NoError(t, err)
	_, err = auth.CreateUser(ctx, "funcionario", "123456", model.RoleEmployee)
	require.NoError(t, err)

	env := &testEnv{engine: router.New(cfg, repos, nil, nil)}
	env.admin = env.login(t, "admin", "admin")
	env.employee = env.login(t, "funcionario", "123456")
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func (e *testEnv) createProduct(t *testing.T, name, barcode string, price float64, stock *int) dto.ProductResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/productos", map[string]any{
		"name":          name,
		"barcode":       barcode,
		"purchasePrice": price / 2,
		"sellingPrice":  price,
	}, e.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p dto.ProductResponse
	decode(t, w, &p)

	if stock != nil {
		w = e.do(t, http.MethodPut, "/v1/inventario/"+p.ID, map[string]any{
			"currentQuantity": *stock, "minQuantity": 1, "maxQuantity": 50,
		}, e.admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	return p
}

func intp(v int) *int { return &v }

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth_MemoryStore(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "disabled", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogin_BadCredentials(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Usuário ou senha inválidos", body["detail"])
}

func TestAuthAndRoles(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/pos", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/productos", map[string]any{"name": "X", "barcode": "1", "sellingPrice": 1}, env.employee)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/dashboard", nil, env.employee)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/dashboard", nil, env.admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/productos", nil, env.employee)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts_ValidationAndConflicts(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/productos", map[string]any{"barcode": "123", "sellingPrice": 5}, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env.createProduct(t, "Cerveja Lata", "7896000000015", 4.5, nil)
	w = env.do(t, http.MethodPost, "/v1/productos", map[string]any{"name": "Dup", "barcode": "7896000000015", "sellingPrice": 1}, env.admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/v1/productos/not-a-uuid", nil, env.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/productos/barcode/7896000000015", nil, env.employee)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPriceLookup_Public(t *testing.T) {
	env := setupTestEnv(t)
	env.createProduct(t, "Água Mineral", "7896000000022", 2.5, intp(7))

	w := env.do(t, http.MethodGet, "/v1/precio/7896000000022", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.PriceLookupResponse
	decode(t, w, &resp)
	assert.Equal(t, "2.5", resp.SellingPrice.String())
	require.NotNil(t, resp.AvailableStock)
	assert.Equal(t, 7, *resp.AvailableStock)

	w = env.do(t, http.MethodGet, "/v1/precio/0000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPOS_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProduct(t, "Cerveja Lata", "7896000000039", 5, intp(2))

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodPost, "/v1/pos/items", dto.AddItemRequest{ProductID: p.ID}, env.employee)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// Third unit exceeds stock: notice plus unchanged state.
	w := env.do(t, http.MethodPost, "/v1/pos/scan", dto.ScanRequest{Barcode: p.Barcode}, env.employee)
	require.Equal(t, http.StatusConflict, w.Code)
	var rejected dto.NoticeResponse
	decode(t, w, &rejected)
	assert.Equal(t, "Estoque insuficiente para Cerveja Lata", rejected.Detail)
	require.Len(t, rejected.State.Lines, 1)
	assert.Equal(t, 2, rejected.State.Lines[0].Quantity)

	// Raw quantity input that is not a number is ignored.
	w = env.do(t, http.MethodPatch, "/v1/pos/items/"+p.ID, map[string]any{"quantity": "abc"}, env.employee)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/v1/pos/discount", dto.DiscountRequest{Discount: "2,50"}, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var state dto.POSStateResponse
	decode(t, w, &state)
	assert.Equal(t, "2", state.Discount.String())
	assert.Equal(t, "8", state.Total.String())

	w = env.do(t, http.MethodPut, "/v1/pos/payment-method", dto.PaymentMethodRequest{PaymentMethod: "pix"}, env.employee)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/pos/checkout", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, service.PhaseConfirmationPending, state.Phase)

	w = env.do(t, http.MethodDelete, "/v1/pos", nil, env.employee)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/v1/pos/checkout/confirm", nil, env.employee)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sale dto.SaleResponse
	decode(t, w, &sale)
	assert.Equal(t, "8", sale.Total.String())
	assert.Equal(t, "pix", sale.PaymentMethod)
	assert.Equal(t, "funcionario", sale.SellerName)

	w = env.do(t, http.MethodGet, "/v1/inventario/"+p.ID, nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var inv dto.InventoryResponse
	decode(t, w, &inv)
	assert.Equal(t, 0, inv.CurrentQuantity)
	assert.Equal(t, model.StockLow, inv.Status)

	w = env.do(t, http.MethodGet, "/v1/inventario/alertas", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []dto.LowStockAlertResponse
	decode(t, w, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].Deficit)

	w = env.do(t, http.MethodGet, "/v1/ventas", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.SaleListResponse
	decode(t, w, &list)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, sale.ID, list.Data[0].ID)

	w = env.do(t, http.MethodGet, "/v1/ventas/"+sale.ID, nil, env.employee)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/pos", nil, env.employee)
	decode(t, w, &state)
	assert.Equal(t, service.PhaseIdle, state.Phase)
	assert.Empty(t, state.Lines)
}

// doChunked sends body without a Content-Length, as streaming clients do.
func (e *testEnv) doChunked(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestPOS_ConfirmBindsChunkedBody(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProduct(t, "Cerveja Garrafa", "7896000000077", 7, intp(5))

	w := env.do(t, http.MethodPost, "/v1/pos/items", dto.AddItemRequest{ProductID: p.ID}, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/v1/pos/checkout", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The body is read and validated even without a Content-Length.
	w = env.doChunked(http.MethodPost, "/v1/pos/checkout/confirm", `{"customerEmail":"not-an-email"}`, env.employee)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = env.doChunked(http.MethodPost, "/v1/pos/checkout/confirm", `{not json`, env.employee)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.doChunked(http.MethodPost, "/v1/pos/checkout/confirm", `{"customerEmail":"cliente@example.com"}`, env.employee)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPOS_ConfirmAcceptsEmptyChunkedBody(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProduct(t, "Gelo", "7896000000084", 8, nil)

	w := env.do(t, http.MethodPost, "/v1/pos/items", dto.AddItemRequest{ProductID: p.ID}, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/v1/pos/checkout", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doChunked(http.MethodPost, "/v1/pos/checkout/confirm", "", env.employee)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPOS_EmptyCartCheckout(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/pos/checkout", nil, env.employee)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var rejected dto.NoticeResponse
	decode(t, w, &rejected)
	assert.Equal(t, "O carrinho está vazio", rejected.Detail)
	assert.Equal(t, service.PhaseIdle, rejected.State.Phase)

	w = env.do(t, http.MethodPost, "/v1/pos/checkout/cancel", nil, env.employee)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPOS_UnknownLine(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProduct(t, "Vinho", "7896000000046", 30, nil)

	w := env.do(t, http.MethodDelete, "/v1/pos/items/"+p.ID, nil, env.employee)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, "/v1/pos/items/"+p.ID, map[string]any{"delta": 1}, env.employee)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, "/v1/pos/items/"+p.ID, map[string]any{}, env.employee)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInventory_ListByStatus(t *testing.T) {
	env := setupTestEnv(t)
	env.createProduct(t, "Cerveja", "7896000000053", 4, intp(0))
	env.createProduct(t, "Água", "7896000000060", 2, intp(10))

	w := env.do(t, http.MethodGet, "/v1/inventario?status=low", nil, env.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []dto.InventoryRowResponse
	decode(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cerveja", rows[0].Product.Name)

	w = env.do(t, http.MethodGet, "/v1/inventario?status=bogus", nil, env.employee)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProducts_DeleteCascade(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProduct(t, "Gin 1L", "7896000000077", 80, intp(3))

	w := env.do(t, http.MethodDelete, "/v1/productos/"+p.ID, nil, env.admin)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/v1/inventario/"+p.ID, nil, env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/v1/productos/"+p.ID, nil, env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
