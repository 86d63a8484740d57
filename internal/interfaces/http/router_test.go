package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockLedger-api/internal/application/fulfillment"
	"github.com/jhoicas/StockLedger-api/internal/application/ledger"
	"github.com/jhoicas/StockLedger-api/internal/application/lowstock"
	apptransfer "github.com/jhoicas/StockLedger-api/internal/application/transfer"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
	"github.com/jhoicas/StockLedger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/StockLedger-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	apiProductID  = "00000000-0000-0000-0000-0000000000aa"
	apiFromBranch = "00000000-0000-0000-0000-0000000000b1"
	apiToBranch   = "00000000-0000-0000-0000-0000000000b2"
)

// fakeReport evita renderizar un PDF real en los tests del router.
type fakeReport struct{}

func (fakeReport) Generate(_ repository.MovementFilter, _ []*entity.StockMovement) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

// buildAPIApp levanta la API completa sobre un almacén en memoria.
func buildAPIApp() (*fiber.App, *memory.Store) {
	store := memory.NewStore()
	ledgerUC := ledger.NewUseCase(store, store.RecordRepo(), store.MovementRepo())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LedgerUC:       ledgerUC,
		TransferUC:     apptransfer.NewUseCase(store, store.TransferRepo()),
		FulfillmentUC:  fulfillment.NewUseCase(store, ledgerUC),
		LowStockUC:     lowstock.NewUseCase(store.RecordRepo()),
		MovementReport: fakeReport{},
		JWTSecret:      testJWTSecret,
	})
	return app, store
}

// doJSON lanza una petición con body JSON y token del rol dado.
func doJSON(t *testing.T, app *fiber.App, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock: restock, get, adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RestockYGet(t *testing.T) {
	app, _ := buildAPIApp()

	resp := doJSON(t, app, http.MethodPost, "/api/stock/restock", "bodeguero", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"quantity":   100,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(100), body["quantity"])
	assert.Equal(t, float64(100), body["available_quantity"])

	resp = doJSON(t, app, http.MethodGet, "/api/stock/"+apiProductID+"/"+apiFromBranch, "vendedor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el vendedor sí puede consultar")
	body = decodeBody(t, resp)
	assert.Equal(t, float64(100), body["quantity"])
}

func TestAPI_Get_Inexistente_404(t *testing.T) {
	app, _ := buildAPIApp()

	resp := doJSON(t, app, http.MethodGet, "/api/stock/"+apiProductID+"/"+apiFromBranch, "admin", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// El vendedor no ingresa ni ajusta stock.
func TestAPI_Restock_VendedorForbidden(t *testing.T) {
	app, _ := buildAPIApp()

	resp := doJSON(t, app, http.MethodPost, "/api/stock/restock", "vendedor", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"quantity":   10,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_Adjust_SinMotivo_400(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 50})

	resp := doJSON(t, app, http.MethodPost, "/api/stock/adjust", "admin", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"delta":      -5,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CicloDeTraslado(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 100})

	resp := doJSON(t, app, http.MethodPost, "/api/transfers/", "bodeguero", fiber.Map{
		"product_id":     apiProductID,
		"from_branch_id": apiFromBranch,
		"to_branch_id":   apiToBranch,
		"quantity":       20,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	transferID, _ := created["id"].(string)
	require.NotEmpty(t, transferID)
	assert.Equal(t, "pending", created["status"])

	resp = doJSON(t, app, http.MethodPost, "/api/transfers/"+transferID+"/advance", "bodeguero", fiber.Map{
		"target_status": "in_transit",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "in_transit", decodeBody(t, resp)["status"])

	resp = doJSON(t, app, http.MethodPost, "/api/transfers/"+transferID+"/advance", "bodeguero", fiber.Map{
		"target_status": "completed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decodeBody(t, resp)["status"])

	// El destino quedó acreditado
	resp = doJSON(t, app, http.MethodGet, "/api/stock/"+apiProductID+"/"+apiToBranch, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(20), decodeBody(t, resp)["quantity"])
}

func TestAPI_Traslado_TransicionInvalida_409(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 100})

	resp := doJSON(t, app, http.MethodPost, "/api/transfers/", "admin", fiber.Map{
		"product_id":     apiProductID,
		"from_branch_id": apiFromBranch,
		"to_branch_id":   apiToBranch,
		"quantity":       20,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	transferID, _ := decodeBody(t, resp)["id"].(string)

	resp = doJSON(t, app, http.MethodPost, "/api/transfers/"+transferID+"/advance", "admin", fiber.Map{
		"target_status": "completed",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "pending no puede saltar a completed")
}

func TestAPI_Traslado_MismaSucursal_400(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 100})

	resp := doJSON(t, app, http.MethodPost, "/api/transfers/", "admin", fiber.Map{
		"product_id":     apiProductID,
		"from_branch_id": apiFromBranch,
		"to_branch_id":   apiFromBranch,
		"quantity":       20,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fulfillment
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Fulfillment_ReservaYCompleta(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 50})

	resp := doJSON(t, app, http.MethodPost, "/api/fulfillment/reserve", "vendedor", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"quantity":   10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), decodeBody(t, resp)["reserved_quantity"])

	resp = doJSON(t, app, http.MethodPost, "/api/fulfillment/complete", "vendedor", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"quantity":   10,
		"order_kind": "sale",
		"order_id":   "order-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(40), body["quantity"])
	assert.Equal(t, float64(0), body["reserved_quantity"])
}

func TestAPI_Fulfillment_ReservaInsuficiente_409(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 5})

	resp := doJSON(t, app, http.MethodPost, "/api/fulfillment/reserve", "vendedor", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"quantity":   10,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial y export
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Movements_ListaYExporta(t *testing.T) {
	app, _ := buildAPIApp()

	resp := doJSON(t, app, http.MethodPost, "/api/stock/restock", "bodeguero", fiber.Map{
		"product_id": apiProductID,
		"branch_id":  apiFromBranch,
		"quantity":   100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/stock/movements?product_id="+apiProductID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["total"])

	resp = doJSON(t, app, http.MethodGet, "/api/stock/movements/export", "admin", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "movimientos.pdf")
}

func TestAPI_Movements_FechaInvalida_400(t *testing.T) {
	app, _ := buildAPIApp()

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements?from=ayer", "admin", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Low stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_LowStock(t *testing.T) {
	app, store := buildAPIApp()
	store.Seed(&entity.StockRecord{ID: "rec-1", ProductID: apiProductID, BranchID: apiFromBranch, Quantity: 2, ReorderPoint: 10, ReorderQuantity: 30})
	store.Seed(&entity.StockRecord{ID: "rec-2", ProductID: "prod-sano", BranchID: apiFromBranch, Quantity: 50, ReorderPoint: 10})

	resp := doJSON(t, app, http.MethodGet, "/api/stock/low", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["total"])
}
