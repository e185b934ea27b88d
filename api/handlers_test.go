package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/store/memory"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestAPI() (*memory.Store, http.Handler) {
	st := memory.New()
	h := NewHandler(st, engine.New(st, nil))
	return st, NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

const quarterlyConfigDoc = `{
	"quarter": "2025-Q1",
	"max_bonus_per_rep": 10000,
	"buckets": [
		{"code": "A", "name": "New Business", "weight": 0.6},
		{"code": "B", "name": "Retention", "weight": 0.4}
	],
	"role_scales": [{"title": "Account Executive", "percentage": 1.0}],
	"budgets": [{"title": "Account Executive",
	             "bucket_goals": {"A": 50000, "B": 30000}}]
}`

const monthlyConfigDoc = `{
	"month": "2025-03",
	"rates": [
		{"title": "Account Executive", "segment": "wholesale",
		 "status": "6_month_active", "percentage": 0.09}
	],
	"commission_rules": {"exclude_shipping": true}
}`

// =============================================================================
// CONFIG ENDPOINTS
// =============================================================================

func TestPutGetQuarterlyConfig_RoundTrip(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodPut, "/api/config/quarterly/2025-Q1", quarterlyConfigDoc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/config/quarterly/2025-Q1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, "2025-Q1", doc["quarter"])
	assert.Len(t, doc["buckets"], 2)
}

func TestPutQuarterlyConfig_InvalidWeights_Rejected(t *testing.T) {
	_, router := newTestAPI()

	doc := `{
		"quarter": "2025-Q1",
		"max_bonus_per_rep": 10000,
		"buckets": [{"code": "A", "weight": 0.5}],
		"role_scales": [],
		"budgets": []
	}`
	rec := doJSON(t, router, http.MethodPut, "/api/config/quarterly/2025-Q1", doc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutQuarterlyConfig_QuarterMismatch_Rejected(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodPut, "/api/config/quarterly/2025-Q2", quarterlyConfigDoc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMonthlyConfig_Missing_NotFound(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodGet, "/api/config/monthly/2025-07", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutGetMonthlyConfig_RoundTrip(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodPut, "/api/config/monthly/2025-03", monthlyConfigDoc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/config/monthly/2025-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, "2025-03", doc["month"])
}

// =============================================================================
// IMPORT + RUN FLOW
// =============================================================================

func importMonthlyFixtures(t *testing.T, router http.Handler) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPut, "/api/config/monthly/2025-03", monthlyConfigDoc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/import/reps", ImportRepsRequest{
		Reps: []RepJSON{{ID: "rep-1", Name: "Jordan", Title: "Account Executive"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/import/customers", ImportCustomersRequest{
		Customers: []CustomerJSON{{
			ID: "cust-1", Segment: "wholesale", LastOrderDate: "2025-02-01",
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/import/orders", ImportOrdersRequest{
		Orders: []OrderJSON{
			{OrderID: "ord-1", CustomerID: "cust-1", RepID: "rep-1", Product: "SKU-1",
				OrderDate: "2025-03-10",
				OrderValue: comp.NewMoney(1100), Revenue: comp.NewMoney(1000)},
			{OrderID: "ord-1-ship", CustomerID: "cust-1", RepID: "rep-1", Product: "SHIP",
				Category: "shipping", OrderDate: "2025-03-10",
				OrderValue: comp.NewMoney(25), Revenue: comp.NewMoney(25)},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRunMonthly_EndToEnd(t *testing.T) {
	// GIVEN a stored snapshot, reps, customers, and orders
	// WHEN a monthly run is triggered over HTTP
	// THEN the shipping line is skipped and the standard line pays 9%
	_, router := newTestAPI()
	importMonthlyFixtures(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/runs/monthly", RunMonthlyRequest{Month: "2025-03"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[MonthlyRunResponse](t, rec)
	assert.Equal(t, "completed", resp.Run.Status)
	assert.Equal(t, 2, resp.Run.RecordsProcessed)
	assert.Equal(t, 1, resp.Run.RecordsWritten)
	assert.Equal(t, 1, resp.Run.Skipped[string(comp.SkipExcludedProduct)])
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "ord-1", resp.Records[0].OrderID)
	assert.True(t, resp.Records[0].Total.Equal(comp.NewMoney(90)))
}

func TestRunMonthly_MissingConfig_NotFound(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodPost, "/api/runs/monthly", RunMonthlyRequest{Month: "2025-07"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunQuarterly_EndToEnd(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodPut, "/api/config/quarterly/2025-Q1", quarterlyConfigDoc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/import/actuals", ImportActualsRequest{
		Quarter: "2025-Q1",
		Actuals: []RepActualsJSON{
			{RepID: "rep-1", Title: "Account Executive", BucketActuals: map[string]comp.Money{
				"A": comp.NewMoney(50000), "B": comp.NewMoney(30000),
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[ImportResponse](t, rec).Imported)

	rec = doJSON(t, router, http.MethodPost, "/api/runs/quarterly", RunQuarterlyRequest{Quarter: "2025-Q1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[QuarterlyRunResponse](t, rec)
	assert.Equal(t, "completed", resp.Run.Status)
	assert.Len(t, resp.Entries, 2)
	assert.True(t, resp.Run.TotalPaid.Equal(comp.NewMoney(10000)))
	assert.Empty(t, resp.RepErrors)
}

// =============================================================================
// RESULT AND RUN QUERIES
// =============================================================================

func TestGetMonthlyResultsForRep(t *testing.T) {
	_, router := newTestAPI()
	importMonthlyFixtures(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/runs/monthly", RunMonthlyRequest{Month: "2025-03"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/results/monthly/2025-03/reps/rep-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]CommissionRecordDTO](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "rep-1", records[0].RepID)

	rec = doJSON(t, router, http.MethodGet, "/api/results/monthly/2025-03/reps/rep-other", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]CommissionRecordDTO](t, rec))
}

func TestListRuns_NewestFirst(t *testing.T) {
	_, router := newTestAPI()
	importMonthlyFixtures(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/runs/monthly", RunMonthlyRequest{Month: "2025-03"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/runs/monthly", RunMonthlyRequest{Month: "2025-03"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/runs?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]RunDTO](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, "monthly", runs[0].Kind)
	assert.Equal(t, "completed", runs[0].Status)
}

func TestImportOrders_BadDate_Rejected(t *testing.T) {
	_, router := newTestAPI()

	rec := doJSON(t, router, http.MethodPost, "/api/import/orders", ImportOrdersRequest{
		Orders: []OrderJSON{{OrderID: "ord-x", OrderDate: "03/10/2025"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
