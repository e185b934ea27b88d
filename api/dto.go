/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Import:
    RepJSON, ImportRepsRequest
    CustomerJSON, ImportCustomersRequest
    OrderJSON, ImportOrdersRequest
    RepActualsJSON, ImportActualsRequest

  Config:
    factory.QuarterlyConfigJSON and factory.MonthlyConfigJSON are used
    directly; the API contract for plan documents IS the factory schema.

  Runs and results:
    RunDTO, QuarterlyRunResponse, MonthlyRunResponse
    CommissionRecordDTO, AppliedSpiffDTO, QuarterlyEntryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: The plan document schemas
*/
package api

import (
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
	"github.com/warp/commission-engine/store"
)

// =============================================================================
// IMPORT REQUESTS
// =============================================================================

// RepJSON represents a sales representative in import payloads.
type RepJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Active *bool  `json:"active,omitempty"` // defaults true
}

type ImportRepsRequest struct {
	Reps []RepJSON `json:"reps"`
}

// CustomerJSON represents a customer in import payloads. Dates are
// YYYY-MM-DD; omitted dates mean no history.
type CustomerJSON struct {
	ID             string `json:"id"`
	AccountType    string `json:"account_type,omitempty"`
	Segment        string `json:"segment"`
	LastOrderDate  string `json:"last_order_date,omitempty"`
	TransferDate   string `json:"transfer_date,omitempty"`
	TransferStatus string `json:"transfer_status,omitempty"` // auto / own / transferred
}

type ImportCustomersRequest struct {
	Customers []CustomerJSON `json:"customers"`
}

// OrderJSON represents one normalized order line in import payloads.
type OrderJSON struct {
	OrderID    string     `json:"order_id"`
	CustomerID string     `json:"customer_id"`
	RepID      string     `json:"rep_id"`
	Product    string     `json:"product"`
	Category   string     `json:"category,omitempty"` // defaults "standard"
	OrderDate  string     `json:"order_date"`
	OrderValue comp.Money `json:"order_value"`
	Revenue    comp.Money `json:"revenue"`
}

type ImportOrdersRequest struct {
	Orders []OrderJSON `json:"orders"`
}

// RepActualsJSON carries one rep's quarterly figures. Sub-goal actuals are
// keyed bucket code -> sub-goal ID.
type RepActualsJSON struct {
	RepID          string                           `json:"rep_id"`
	Title          string                           `json:"title"`
	BucketActuals  map[string]comp.Money            `json:"bucket_actuals,omitempty"`
	SubGoalActuals map[string]map[string]comp.Money `json:"sub_goal_actuals,omitempty"`
}

type ImportActualsRequest struct {
	Quarter string           `json:"quarter"`
	Actuals []RepActualsJSON `json:"actuals"`
}

// ImportResponse reports how many records an import accepted.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// =============================================================================
// RUNS
// =============================================================================

// RunDTO represents a calculation run in API responses.
type RunDTO struct {
	ID               string         `json:"id"`
	Kind             string         `json:"kind"`
	Period           string         `json:"period"`
	Status           string         `json:"status"`
	Error            string         `json:"error,omitempty"`
	RecordsProcessed int            `json:"records_processed"`
	RecordsWritten   int            `json:"records_written"`
	TotalPaid        comp.Money     `json:"total_paid"`
	Skipped          map[string]int `json:"skipped,omitempty"`
	StartedAt        string         `json:"started_at"`
	CompletedAt      string         `json:"completed_at,omitempty"`
}

// RunQuarterlyRequest triggers a quarterly calculation.
type RunQuarterlyRequest struct {
	Quarter string `json:"quarter"`
}

// RunMonthlyRequest triggers a monthly calculation.
type RunMonthlyRequest struct {
	Month string `json:"month"`
}

// QuarterlyRunResponse is the result of a quarterly run.
type QuarterlyRunResponse struct {
	Run       RunDTO              `json:"run"`
	Entries   []QuarterlyEntryDTO `json:"entries"`
	RepErrors map[string]string   `json:"rep_errors,omitempty"`
}

// MonthlyRunResponse is the result of a monthly run.
type MonthlyRunResponse struct {
	Run     RunDTO               `json:"run"`
	Records []CommissionRecordDTO `json:"records"`
}

// =============================================================================
// RESULTS
// =============================================================================

// AppliedSpiffDTO is one spiff contribution on a commission record.
type AppliedSpiffDTO struct {
	Product       string     `json:"product"`
	Name          string     `json:"name"`
	IncentiveType string     `json:"incentive_type"`
	Amount        comp.Money `json:"amount"`
}

// CommissionRecordDTO represents one monthly commission record.
type CommissionRecordDTO struct {
	Period      string     `json:"period"`
	OrderID     string     `json:"order_id"`
	RepID       string     `json:"rep_id"`
	CustomerID  string     `json:"customer_id"`
	AccountType string     `json:"account_type,omitempty"`
	Segment     string     `json:"segment"`
	Status      string     `json:"status"`
	Base        comp.Money `json:"base"`
	RateKind    string     `json:"rate_kind"`
	Rate        comp.Ratio `json:"rate"`
	RatePath    string     `json:"rate_path"`
	Commission  comp.Money `json:"commission"`

	AppliedSpiffs []AppliedSpiffDTO `json:"applied_spiffs,omitempty"`
	SpiffBonus    comp.Money        `json:"spiff_bonus"`
	Total         comp.Money        `json:"total"`

	CalculatedAt string `json:"calculated_at"`
}

// QuarterlyEntryDTO represents one quarterly bucket entry.
type QuarterlyEntryDTO struct {
	RepID         string     `json:"rep_id"`
	Quarter       string     `json:"quarter"`
	Bucket        string     `json:"bucket"`
	Goal          comp.Money `json:"goal"`
	Actual        comp.Money `json:"actual"`
	Attainment    comp.Ratio `json:"attainment"`
	WeightedScore comp.Ratio `json:"weighted_score"`
	Payout        comp.Money `json:"payout"`
	CalculatedAt  string     `json:"calculated_at"`
}

// RepDTO represents a stored rep in API responses.
type RepDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func runDTO(run store.Run) RunDTO {
	dto := RunDTO{
		ID:               run.ID,
		Kind:             string(run.Kind),
		Period:           run.Period,
		Status:           string(run.Status),
		Error:            run.Error,
		RecordsProcessed: run.RecordsProcessed,
		RecordsWritten:   run.RecordsWritten,
		TotalPaid:        run.TotalPaid,
		StartedAt:        run.StartedAt.Format(timeLayout),
	}
	if run.CompletedAt != nil {
		dto.CompletedAt = run.CompletedAt.Format(timeLayout)
	}
	if len(run.Skipped) > 0 {
		dto.Skipped = make(map[string]int, len(run.Skipped))
		for reason, n := range run.Skipped {
			dto.Skipped[string(reason)] = n
		}
	}
	return dto
}

func entryDTO(e quarterly.CommissionEntry) QuarterlyEntryDTO {
	return QuarterlyEntryDTO{
		RepID:         string(e.Rep),
		Quarter:       e.Quarter.String(),
		Bucket:        string(e.Bucket),
		Goal:          e.Goal,
		Actual:        e.Actual,
		Attainment:    e.Attainment,
		WeightedScore: e.WeightedScore,
		Payout:        e.Payout,
		CalculatedAt:  e.CalculatedAt.Format(timeLayout),
	}
}

func recordDTO(r monthly.CommissionRecord) CommissionRecordDTO {
	dto := CommissionRecordDTO{
		Period:       r.Period.String(),
		OrderID:      string(r.OrderID),
		RepID:        string(r.Rep),
		CustomerID:   string(r.Customer),
		AccountType:  r.AccountType,
		Segment:      string(r.Segment),
		Status:       string(r.Status),
		Base:         r.Base,
		RateKind:     string(r.RateKind),
		Rate:         r.Rate,
		RatePath:     string(r.RatePath),
		Commission:   r.Commission,
		SpiffBonus:   r.SpiffBonus,
		Total:        r.Total,
		CalculatedAt: r.CalculatedAt.Format(timeLayout),
	}
	for _, s := range r.AppliedSpiffs {
		dto.AppliedSpiffs = append(dto.AppliedSpiffs, AppliedSpiffDTO{
			Product:       string(s.Product),
			Name:          s.Name,
			IncentiveType: string(s.IncentiveType),
			Amount:        s.Amount,
		})
	}
	return dto
}
