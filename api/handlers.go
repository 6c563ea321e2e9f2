/*
handlers.go - HTTP API handlers for workers, attendance and payroll

PURPOSE:
  Exposes the attendance store and payroll calculator via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Workers:
    GET    /api/workers                       List all workers
    POST   /api/workers                       Create worker
    GET    /api/workers/{id}                  Get worker
    PUT    /api/workers/{id}                  Update worker
    DELETE /api/workers/{id}                  Delete worker and attendance

  Attendance:
    GET    /api/workers/{id}/attendance?month=YYYY-MM
    PUT    /api/workers/{id}/attendance/{date}
    DELETE /api/workers/{id}/attendance/{date}
    GET    /api/statuses                      Status legend

  Payroll:
    GET    /api/workers/{id}/payroll?range=this_month|custom&from=&to=&advance=
    GET    /api/summary?month=YYYY-MM
    GET    /api/summary.csv?month=YYYY-MM

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (before any store call)
  3. Call store / calculator
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Worker not found
  - 500: Store failures. The message is generic; nothing was changed.

SEE ALSO:
  - dto.go: Request/response data structures
  - lock.go: App lock endpoints
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/farm-ledger/applock"
	"github.com/warp/farm-ledger/attendance"
	"github.com/warp/farm-ledger/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter clears all workers and attendance.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      attendance.Store
	Calculator *payroll.Calculator
	Lock       *applock.Lock
	Metrics    *Metrics
	Logger     *slog.Logger

	// Resetter backs scenario loading. Nil disables /api/scenarios/load.
	Resetter Resetter

	now func() time.Time

	// Track currently loaded scenario
	scenarioMu      sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler. metrics and logger may be nil.
func NewHandler(store attendance.Store, calc *payroll.Calculator, lock *applock.Lock, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:      store,
		Calculator: calc,
		Lock:       lock,
		Metrics:    metrics,
		Logger:     logger,
		now:        time.Now,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.GetAllWorkers(r.Context())
	if err != nil {
		h.writeStoreError(w, r, "list_workers", "Failed to list workers", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.loadWorker(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*worker))
}

// CreateWorker creates a new worker.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := req.toNewWorker()
	if err := in.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	worker, err := h.Store.CreateWorker(r.Context(), in)
	if err != nil {
		h.writeStoreError(w, r, "create_worker", "Failed to add worker", err)
		return
	}

	h.Logger.InfoContext(r.Context(), "worker created", slog.String("worker_id", worker.ID.String()))
	writeJSON(w, http.StatusCreated, toWorkerDTO(worker))
}

// UpdateWorker replaces a worker's details.
func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))

	var req WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := req.toNewWorker()
	if err := in.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	worker, err := h.Store.UpdateWorker(r.Context(), id, in)
	if err != nil {
		h.writeStoreError(w, r, "update_worker", "Failed to update worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(worker))
}

// DeleteWorker removes a worker and their attendance.
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteWorker(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "delete_worker", "Failed to delete worker", err)
		return
	}

	h.Logger.InfoContext(r.Context(), "worker deleted", slog.String("worker_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetMonthAttendance returns one worker's records and date map for a month.
// GET /api/workers/{id}/attendance?month=YYYY-MM
func (h *Handler) GetMonthAttendance(w http.ResponseWriter, r *http.Request) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))

	month, err := h.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	records, err := h.Store.GetAttendanceForMonth(r.Context(), id, month)
	if err != nil {
		h.writeStoreError(w, r, "get_attendance", "Failed to load attendance", err)
		return
	}

	m := make(map[string]string, len(records))
	for date, st := range attendance.AttendanceMap(records) {
		m[date] = string(st)
	}

	writeJSON(w, http.StatusOK, MonthAttendanceDTO{
		WorkerID:    string(id),
		Month:       string(month),
		DaysInMonth: month.DaysIn(),
		Records:     toRecordDTOs(records),
		Map:         m,
	})
}

// SetAttendance marks a worker's status for a date.
// PUT /api/workers/{id}/attendance/{date}
func (h *Handler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))
	date := chi.URLParam(r, "date")

	var req SetAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, err := attendance.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status", err)
		return
	}
	if _, err := attendance.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.SetAttendance(r.Context(), id, date, status); err != nil {
		h.writeStoreError(w, r, "set_attendance", "Failed to save attendance", err)
		return
	}

	writeJSON(w, http.StatusOK, AttendanceRecordDTO{
		WorkerID: string(id),
		Date:     date,
		Status:   string(status),
	})
}

// ClearAttendance removes a worker's record for a date.
// DELETE /api/workers/{id}/attendance/{date}
func (h *Handler) ClearAttendance(w http.ResponseWriter, r *http.Request) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))
	date := chi.URLParam(r, "date")

	if _, err := attendance.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.ClearAttendance(r.Context(), id, date); err != nil {
		h.writeStoreError(w, r, "clear_attendance", "Failed to clear attendance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStatuses returns the status legend.
func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses := attendance.Statuses()
	dtos := make([]StatusDTO, len(statuses))
	for i, s := range statuses {
		dtos[i] = StatusDTO{Value: string(s), Label: s.Label(), Short: s.Short(), Color: s.Color()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayroll runs the payroll calculator for one worker.
// GET /api/workers/{id}/payroll?range=this_month|custom&from=&to=&advance=
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))
	q := r.URL.Query()

	kind := payroll.RangeKind(q.Get("range"))
	period, err := h.Calculator.Resolve(kind, q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	advance, err := payroll.ParseAdvance(q.Get("advance"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid advance amount", err)
		return
	}

	report, err := h.Calculator.Calculate(r.Context(), id, period)
	if err != nil {
		h.writeStoreError(w, r, "calculate_payroll", "Failed to calculate payroll", err)
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "Worker not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPayrollDTO(kind, report, advance))
}

// GetSummary returns the monthly summary for every worker.
// GET /api/summary?month=YYYY-MM
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// ExportSummaryCSV returns the monthly summary as a CSV download.
// GET /api/summary.csv?month=YYYY-MM
func (h *Handler) ExportSummaryCSV(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.loadSummary(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="attendance-summary-%s.csv"`, summary.Month))
	w.WriteHeader(http.StatusOK)
	if err := summary.WriteCSV(w); err != nil {
		h.Logger.ErrorContext(r.Context(), "csv export failed", slog.Any("error", err))
	}
}

func (h *Handler) loadSummary(w http.ResponseWriter, r *http.Request) (*payroll.Summary, bool) {
	month, err := h.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return nil, false
	}

	summary, err := payroll.Summarize(r.Context(), h.Store, month)
	if err != nil {
		h.writeStoreError(w, r, "summary", "Failed to build monthly summary", err)
		return nil, false
	}
	return summary, true
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadWorker(w http.ResponseWriter, r *http.Request) (*attendance.Worker, bool) {
	id := attendance.WorkerID(chi.URLParam(r, "id"))

	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "get_worker", "Failed to get worker", err)
		return nil, false
	}
	if worker == nil {
		writeError(w, http.StatusNotFound, "Worker not found", nil)
		return nil, false
	}
	return worker, true
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) monthParam(r *http.Request) (attendance.MonthToken, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return attendance.MonthOf(h.now()), nil
	}
	return attendance.ParseMonthToken(raw)
}

// writeStoreError maps domain errors to status codes. Anything unexpected is
// logged, counted and reported with a generic message.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op, message string, err error) {
	var verrs attendance.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidationError(w, err)
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Worker not found", nil)
	case attendance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.ErrorContext(r.Context(), "store operation failed",
			slog.String("op", op), slog.Any("error", err))
		if h.Metrics != nil {
			h.Metrics.StoreError(op)
		}
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "Validation failed", Details: err.Error()}
	var verrs attendance.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = verrs.ToMap()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
