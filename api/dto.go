/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND DAYS:
  Decimal values are sent twice: as a JSON number for arithmetic and as a
  fixed-point *_display string (1 dp for days, 2 dp for rupees) that the UI
  shows verbatim.

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/farm-ledger/applock"
	"github.com/warp/farm-ledger/attendance"
	"github.com/warp/farm-ledger/payroll"
)

// =============================================================================
// WORKERS
// =============================================================================

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	DailyWage int64   `json:"daily_wage"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// WorkerRequest is the body for creating or updating a worker.
type WorkerRequest struct {
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	DailyWage int64   `json:"daily_wage"`
}

func (r WorkerRequest) toNewWorker() attendance.NewWorker {
	return attendance.NewWorker{Name: r.Name, Phone: r.Phone, DailyWage: r.DailyWage}
}

func toWorkerDTO(w attendance.Worker) WorkerDTO {
	dto := WorkerDTO{
		ID:        string(w.ID),
		Name:      w.Name,
		Phone:     w.Phone,
		DailyWage: w.DailyWage,
	}
	if !w.CreatedAt.IsZero() {
		dto.CreatedAt = w.CreatedAt.Format(time.RFC3339)
	}
	if !w.UpdatedAt.IsZero() {
		dto.UpdatedAt = w.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceRecordDTO is one (worker, date, status) record.
type AttendanceRecordDTO struct {
	WorkerID string `json:"worker_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// MonthAttendanceDTO is one worker's calendar row for a month.
type MonthAttendanceDTO struct {
	WorkerID    string                `json:"worker_id"`
	Month       string                `json:"month"`
	DaysInMonth int                   `json:"days_in_month"`
	Records     []AttendanceRecordDTO `json:"records"`
	Map         map[string]string     `json:"map"`
}

// SetAttendanceRequest is the body for marking a day.
type SetAttendanceRequest struct {
	Status string `json:"status"`
}

// StatusDTO describes one attendance status for the calendar legend.
type StatusDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Short string `json:"short"`
	Color string `json:"color"`
}

func toRecordDTOs(records []attendance.Record) []AttendanceRecordDTO {
	dtos := make([]AttendanceRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = AttendanceRecordDTO{
			WorkerID: string(r.WorkerID),
			Date:     r.Date,
			Status:   string(r.Status),
		}
	}
	return dtos
}

// =============================================================================
// PAYROLL
// =============================================================================

// TotalsDTO carries payroll totals.
type TotalsDTO struct {
	FullDays             int     `json:"full_days"`
	HalfDays             int     `json:"half_days"`
	MorningEveningDays   int     `json:"morning_evening_days"`
	EffectiveDays        float64 `json:"effective_days"`
	EffectiveDaysDisplay string  `json:"effective_days_display"`
	Payable              float64 `json:"payable"`
	PayableDisplay       string  `json:"payable_display"`
}

func toTotalsDTO(t payroll.Totals) TotalsDTO {
	return TotalsDTO{
		FullDays:             t.FullDays,
		HalfDays:             t.HalfDays,
		MorningEveningDays:   t.MorningEveningDays,
		EffectiveDays:        t.EffectiveDays.InexactFloat64(),
		EffectiveDaysDisplay: t.EffectiveDaysDisplay(),
		Payable:              t.Payable.InexactFloat64(),
		PayableDisplay:       t.PayableDisplay(),
	}
}

// PayrollDTO is the payroll calculator result.
type PayrollDTO struct {
	Worker            WorkerDTO `json:"worker"`
	Range             string    `json:"range"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	Months            []string  `json:"months"`
	RecordCount       int       `json:"record_count"`
	Totals            TotalsDTO `json:"totals"`
	AdvancePaid       float64   `json:"advance_paid"`
	NetPayable        float64   `json:"net_payable"`
	NetPayableDisplay string    `json:"net_payable_display"`
}

func toPayrollDTO(kind payroll.RangeKind, r *payroll.Report, advance decimal.Decimal) PayrollDTO {
	months := make([]string, len(r.Months))
	for i, m := range r.Months {
		months[i] = string(m)
	}
	if kind == "" {
		kind = payroll.RangeThisMonth
	}
	net := payroll.NetPayable(r.Totals.Payable, advance)
	return PayrollDTO{
		Worker:            toWorkerDTO(r.Worker),
		Range:             string(kind),
		From:              attendance.FormatDate(r.Period.Start),
		To:                attendance.FormatDate(r.Period.End),
		Months:            months,
		RecordCount:       r.RecordCount,
		Totals:            toTotalsDTO(r.Totals),
		AdvancePaid:       advance.InexactFloat64(),
		NetPayable:        net.InexactFloat64(),
		NetPayableDisplay: net.StringFixed(2),
	}
}

// SummaryRowDTO is one worker's line in the monthly summary.
type SummaryRowDTO struct {
	Worker WorkerDTO `json:"worker"`
	Totals TotalsDTO `json:"totals"`
}

// SummaryDTO is the monthly summary across all workers.
type SummaryDTO struct {
	Month      string          `json:"month"`
	Rows       []SummaryRowDTO `json:"rows"`
	GrandTotal TotalsDTO       `json:"grand_total"`
}

func toSummaryDTO(s *payroll.Summary) SummaryDTO {
	rows := make([]SummaryRowDTO, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = SummaryRowDTO{Worker: toWorkerDTO(r.Worker), Totals: toTotalsDTO(r.Totals)}
	}
	return SummaryDTO{
		Month:      string(s.Month),
		Rows:       rows,
		GrandTotal: toTotalsDTO(s.GrandTotal),
	}
}

// =============================================================================
// APP LOCK
// =============================================================================

// LockStateDTO describes the app lock.
type LockStateDTO struct {
	State       string `json:"state"`
	Enabled     bool   `json:"enabled"`
	Locked      bool   `json:"locked"`
	HasPasscode bool   `json:"has_passcode"`
}

func toLockStateDTO(st applock.State, hasPasscode bool) LockStateDTO {
	return LockStateDTO{
		State:       string(st),
		Enabled:     st != applock.Disabled,
		Locked:      st == applock.Locked,
		HasPasscode: hasPasscode,
	}
}

// UnlockRequest is the body of POST /api/lock/unlock.
type UnlockRequest struct {
	Passcode string `json:"passcode"`
}

// SetPasscodeRequest is the body of PUT /api/lock/passcode.
type SetPasscodeRequest struct {
	Passcode string `json:"passcode"`
	Confirm  string `json:"confirm"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
