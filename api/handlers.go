/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Config:
    GET    /api/config/quarterly/{quarter}  Get a quarter's plan document
    PUT    /api/config/quarterly/{quarter}  Store a quarter's plan document
    GET    /api/config/monthly/{month}      Get a month's rate snapshot
    PUT    /api/config/monthly/{month}      Store a month's rate snapshot

  Import:
    GET    /api/reps                        List stored reps
    POST   /api/import/reps                 Import representatives
    POST   /api/import/customers            Import customers
    POST   /api/import/orders               Import order records
    POST   /api/import/actuals              Import quarterly actuals

  Runs:
    POST   /api/runs/quarterly              Trigger a quarterly calculation
    POST   /api/runs/monthly                Trigger a monthly calculation
    GET    /api/runs                        List recent runs

  Results:
    GET    /api/results/monthly/{month}                 All commission records
    GET    /api/results/monthly/{month}/reps/{id}       One rep's records
    GET    /api/results/quarterly/{quarter}             All bucket entries
    GET    /api/results/quarterly/{quarter}/reps/{id}   One rep's entries

  Scenarios:
    GET    /api/scenarios                   List demo scenarios
    GET    /api/scenarios/current           Currently loaded scenario
    POST   /api/scenarios/load              Load a demo scenario
    POST   /api/scenarios/reset             Clear all data (dev only)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Persistence
  - Engine: Run orchestration (shared with the CLI)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, broken plan documents
  - 404: Missing period configuration or unknown resource
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
	"github.com/warp/commission-engine/store"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  store.Store
	Engine *engine.Engine

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler around a store and engine.
func NewHandler(st store.Store, eng *engine.Engine) *Handler {
	return &Handler{Store: st, Engine: eng}
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// GetQuarterlyConfig returns a quarter's plan document.
func (h *Handler) GetQuarterlyConfig(w http.ResponseWriter, r *http.Request) {
	quarter, err := comp.ParseQuarter(chi.URLParam(r, "quarter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter (use YYYY-Qn)", err)
		return
	}

	cfg, err := h.Store.GetQuarterlyConfig(r.Context(), quarter)
	if err != nil {
		if errors.Is(err, comp.ErrConfigNotFound) {
			writeError(w, http.StatusNotFound, "No config for quarter", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load config", err)
		return
	}

	writeJSON(w, http.StatusOK, factory.QuarterlyToJSON(cfg))
}

// PutQuarterlyConfig validates and stores a quarter's plan document. The
// URL quarter must match the document's quarter.
func (h *Handler) PutQuarterlyConfig(w http.ResponseWriter, r *http.Request) {
	quarter, err := comp.ParseQuarter(chi.URLParam(r, "quarter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter (use YYYY-Qn)", err)
		return
	}

	var doc factory.QuarterlyConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := factory.QuarterlyFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan document", err)
		return
	}
	if cfg.Quarter != quarter {
		writeError(w, http.StatusBadRequest, "Document quarter does not match URL", nil)
		return
	}

	if err := h.Store.SaveQuarterlyConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save config", err)
		return
	}

	writeJSON(w, http.StatusOK, factory.QuarterlyToJSON(cfg))
}

// GetMonthlyConfig returns a month's rate snapshot document.
func (h *Handler) GetMonthlyConfig(w http.ResponseWriter, r *http.Request) {
	month, err := comp.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	snap, err := h.Store.GetMonthlySnapshot(r.Context(), month)
	if err != nil {
		if errors.Is(err, comp.ErrConfigNotFound) {
			writeError(w, http.StatusNotFound, "No config for month", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load config", err)
		return
	}

	writeJSON(w, http.StatusOK, factory.MonthlyToJSON(snap))
}

// PutMonthlyConfig validates and stores a month's rate snapshot.
func (h *Handler) PutMonthlyConfig(w http.ResponseWriter, r *http.Request) {
	month, err := comp.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	var doc factory.MonthlyConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snap, err := factory.MonthlyFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot document", err)
		return
	}
	if snap.Month != month {
		writeError(w, http.StatusBadRequest, "Document month does not match URL", nil)
		return
	}

	if err := h.Store.SaveMonthlySnapshot(r.Context(), snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save config", err)
		return
	}

	writeJSON(w, http.StatusOK, factory.MonthlyToJSON(snap))
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// ListReps returns all stored representatives.
func (h *Handler) ListReps(w http.ResponseWriter, r *http.Request) {
	reps, err := h.Store.Reps(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reps", err)
		return
	}

	dtos := make([]RepDTO, len(reps))
	for i, rep := range reps {
		dtos[i] = RepDTO{
			ID:     string(rep.ID),
			Name:   rep.Name,
			Title:  string(rep.Title),
			Active: rep.Active,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ImportReps upserts representatives by ID.
func (h *Handler) ImportReps(w http.ResponseWriter, r *http.Request) {
	var req ImportRepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reps := make([]store.Rep, 0, len(req.Reps))
	for _, rj := range req.Reps {
		if rj.ID == "" {
			writeError(w, http.StatusBadRequest, "Rep missing id", nil)
			return
		}
		active := true
		if rj.Active != nil {
			active = *rj.Active
		}
		reps = append(reps, store.Rep{
			ID:     comp.RepID(rj.ID),
			Name:   rj.Name,
			Title:  comp.Title(rj.Title),
			Active: active,
		})
	}

	if err := h.Store.SaveReps(r.Context(), reps); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save reps", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(reps)})
}

// ImportCustomers upserts customers by ID.
func (h *Handler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	var req ImportCustomersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customers := make([]monthly.Customer, 0, len(req.Customers))
	for _, cj := range req.Customers {
		if cj.ID == "" {
			writeError(w, http.StatusBadRequest, "Customer missing id", nil)
			return
		}
		lastOrder, err := parseDatePtr(cj.LastOrderDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid last_order_date (use YYYY-MM-DD)", err)
			return
		}
		transfer, err := parseDatePtr(cj.TransferDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transfer_date (use YYYY-MM-DD)", err)
			return
		}
		customers = append(customers, monthly.Customer{
			ID:             comp.CustomerID(cj.ID),
			AccountType:    cj.AccountType,
			Segment:        comp.SegmentID(cj.Segment),
			LastOrderDate:  lastOrder,
			TransferDate:   transfer,
			TransferStatus: comp.ParseTransferStatus(cj.TransferStatus),
		})
	}

	if err := h.Store.SaveCustomers(r.Context(), customers); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save customers", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(customers)})
}

// ImportOrders upserts order records by order ID.
func (h *Handler) ImportOrders(w http.ResponseWriter, r *http.Request) {
	var req ImportOrdersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	orders := make([]monthly.OrderRecord, 0, len(req.Orders))
	for _, oj := range req.Orders {
		if oj.OrderID == "" {
			writeError(w, http.StatusBadRequest, "Order missing order_id", nil)
			return
		}
		orderDate, err := time.Parse(dateLayout, oj.OrderDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid order_date (use YYYY-MM-DD)", err)
			return
		}
		category := monthly.CategoryStandard
		if oj.Category != "" {
			category = monthly.ProductCategory(oj.Category)
		}
		orders = append(orders, monthly.OrderRecord{
			OrderID:    comp.OrderID(oj.OrderID),
			Customer:   comp.CustomerID(oj.CustomerID),
			Rep:        comp.RepID(oj.RepID),
			Product:    comp.ProductCode(oj.Product),
			Category:   category,
			OrderDate:  orderDate,
			OrderValue: oj.OrderValue,
			Revenue:    oj.Revenue,
		})
	}

	if err := h.Store.SaveOrders(r.Context(), orders); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save orders", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(orders)})
}

// ImportActuals upserts one quarter's per-rep actuals.
func (h *Handler) ImportActuals(w http.ResponseWriter, r *http.Request) {
	var req ImportActualsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	quarter, err := comp.ParseQuarter(req.Quarter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter (use YYYY-Qn)", err)
		return
	}

	actuals := make([]quarterly.RepActuals, 0, len(req.Actuals))
	for _, aj := range req.Actuals {
		if aj.RepID == "" {
			writeError(w, http.StatusBadRequest, "Actuals missing rep_id", nil)
			return
		}
		a := quarterly.RepActuals{
			Rep:   comp.RepID(aj.RepID),
			Title: comp.Title(aj.Title),
		}
		if len(aj.BucketActuals) > 0 {
			a.BucketActuals = make(map[comp.BucketCode]comp.Money, len(aj.BucketActuals))
			for code, v := range aj.BucketActuals {
				a.BucketActuals[comp.BucketCode(code)] = v
			}
		}
		if len(aj.SubGoalActuals) > 0 {
			a.SubGoalActuals = make(map[comp.BucketCode]map[string]comp.Money, len(aj.SubGoalActuals))
			for code, subs := range aj.SubGoalActuals {
				m := make(map[string]comp.Money, len(subs))
				for id, v := range subs {
					m[id] = v
				}
				a.SubGoalActuals[comp.BucketCode(code)] = m
			}
		}
		actuals = append(actuals, a)
	}

	if err := h.Store.SaveRepActuals(r.Context(), quarter, actuals); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save actuals", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(actuals)})
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// RunQuarterly triggers a quarterly calculation. Re-running a quarter
// replaces its entries.
func (h *Handler) RunQuarterly(w http.ResponseWriter, r *http.Request) {
	var req RunQuarterlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	quarter, err := comp.ParseQuarter(req.Quarter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter (use YYYY-Qn)", err)
		return
	}

	res, err := h.Engine.RunQuarterly(r.Context(), quarter)
	if err != nil {
		if errors.Is(err, comp.ErrConfigNotFound) {
			writeError(w, http.StatusNotFound, "No config for quarter", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Quarterly run failed", err)
		return
	}

	resp := QuarterlyRunResponse{Run: runDTO(res.Run)}
	for _, rr := range res.Results {
		for _, e := range rr.Entries {
			resp.Entries = append(resp.Entries, entryDTO(e))
		}
	}
	if len(res.RepErrors) > 0 {
		resp.RepErrors = make(map[string]string, len(res.RepErrors))
		for rep, msg := range res.RepErrors {
			resp.RepErrors[string(rep)] = msg
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// RunMonthly triggers a monthly calculation. Re-running a month replaces
// its records.
func (h *Handler) RunMonthly(w http.ResponseWriter, r *http.Request) {
	var req RunMonthlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	month, err := comp.ParseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	res, err := h.Engine.RunMonthly(r.Context(), month)
	if err != nil {
		if errors.Is(err, comp.ErrConfigNotFound) {
			writeError(w, http.StatusNotFound, "No config for month", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Monthly run failed", err)
		return
	}

	records, err := h.Store.CommissionRecordsForMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	resp := MonthlyRunResponse{Run: runDTO(res.Run)}
	for _, rec := range records {
		resp.Records = append(resp.Records, recordDTO(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRuns returns recent calculation runs, newest first. Accepts ?limit=.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = runDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

// GetMonthlyResults returns a month's commission records, all reps.
func (h *Handler) GetMonthlyResults(w http.ResponseWriter, r *http.Request) {
	month, err := comp.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	records, err := h.Store.CommissionRecordsForMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	dtos := make([]CommissionRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = recordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMonthlyResultsForRep returns one rep's records for a month.
func (h *Handler) GetMonthlyResultsForRep(w http.ResponseWriter, r *http.Request) {
	month, err := comp.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	rep := comp.RepID(chi.URLParam(r, "id"))

	records, err := h.Store.CommissionRecordsForRep(r.Context(), rep, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	dtos := make([]CommissionRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = recordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetQuarterlyResults returns a quarter's bucket entries, all reps.
func (h *Handler) GetQuarterlyResults(w http.ResponseWriter, r *http.Request) {
	quarter, err := comp.ParseQuarter(chi.URLParam(r, "quarter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter (use YYYY-Qn)", err)
		return
	}

	entries, err := h.Store.QuarterlyEntries(r.Context(), quarter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	dtos := make([]QuarterlyEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetQuarterlyResultsForRep returns one rep's entries for a quarter.
func (h *Handler) GetQuarterlyResultsForRep(w http.ResponseWriter, r *http.Request) {
	quarter, err := comp.ParseQuarter(chi.URLParam(r, "quarter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter (use YYYY-Qn)", err)
		return
	}
	rep := comp.RepID(chi.URLParam(r, "id"))

	entries, err := h.Store.QuarterlyEntriesForRep(r.Context(), rep, quarter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	dtos := make([]QuarterlyEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(Scenarios))
	for i, s := range Scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario reports which scenario is loaded, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario resets the store and loads the requested scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	scenario := FindScenario(req.ScenarioID)
	if scenario == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.resetStore(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	if err := scenario.Load(ctx, h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = scenario.ID
	writeJSON(w, http.StatusOK, map[string]string{
		"scenario_id": scenario.ID,
		"name":        scenario.Name,
	})
}

// ResetDatabase clears all stored data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.resetStore(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) resetStore(ctx context.Context) error {
	resetter, ok := h.Store.(interface{ Reset(context.Context) error })
	if !ok {
		return errors.New("store does not support reset")
	}
	return resetter.Reset(ctx)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

func parseDatePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
