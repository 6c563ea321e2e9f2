/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos. Each scenario creates workers and marks attendance for
  the previous and current month, so both "this month" and custom range
  payroll have something to show.

AVAILABLE SCENARIOS:
  small-farm:   Four workers with mixed full, half and morning/evening days
  harvest-rush: Extra seasonal hands, mostly full days across two months
  empty:        No workers

HOW SCENARIOS WORK:
  1. Reset database (clear workers and attendance, keep settings)
  2. Flush the month cache
  3. Create workers through the store
  4. Mark attendance day by day

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "small-farm"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and store wiring
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/warp/farm-ledger/attendance"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-farm",
		Name:        "Small Farm",
		Description: "Four regular workers with a mix of full, half and morning/evening days",
	},
	{
		ID:          "harvest-rush",
		Name:        "Harvest Rush",
		Description: "Regular crew plus seasonal hands over two busy months",
	},
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "No workers, no attendance",
	},
}

// invalidator is implemented by cache.Store.
type invalidator interface {
	Invalidate(ctx context.Context)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(ctx context.Context) error
	switch req.ScenarioID {
	case "small-farm":
		load = h.loadSmallFarmScenario
	case "harvest-rush":
		load = h.loadHarvestRushScenario
	case "empty":
		load = func(context.Context) error { return nil }
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		h.writeStoreError(w, r, "reset", "Failed to reset database", err)
		return
	}

	if err := load(ctx); err != nil {
		h.writeStoreError(w, r, "load_scenario", fmt.Sprintf("Failed to load scenario %q", req.ScenarioID), err)
		return
	}

	h.setScenario(req.ScenarioID)
	h.Logger.InfoContext(ctx, "scenario loaded", slog.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all workers and attendance.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.writeStoreError(w, r, "reset", "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) reset(ctx context.Context) error {
	if h.Resetter == nil {
		return fmt.Errorf("reset is not supported by this store")
	}
	if err := h.Resetter.Reset(ctx); err != nil {
		return err
	}
	if inv, ok := h.Store.(invalidator); ok {
		inv.Invalidate(ctx)
	}
	h.setScenario("")
	return nil
}

func (h *Handler) scenario() string {
	h.scenarioMu.RLock()
	defer h.scenarioMu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.scenarioMu.Lock()
	h.currentScenario = id
	h.scenarioMu.Unlock()
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type seedWorker struct {
	name  string
	phone string
	wage  int64
	// pattern is repeated over the days of each month. "" skips the day.
	pattern []attendance.Status
}

var (
	full = attendance.StatusFull
	half = attendance.StatusHalf
	me   = attendance.StatusMorningEvening
	abs  = attendance.StatusAbsent
)

func (h *Handler) loadSmallFarmScenario(ctx context.Context) error {
	crew := []seedWorker{
		{name: "Ramesh Kumar", phone: "+91 98450 12345", wage: 500,
			pattern: []attendance.Status{full, full, full, half, full, full, abs}},
		{name: "Lakshmi Devi", phone: "98860 55501", wage: 450,
			pattern: []attendance.Status{full, me, full, me, half, full, abs}},
		{name: "Suresh", wage: 400,
			pattern: []attendance.Status{half, half, full, abs, full, "", abs}},
		{name: "Manjula", phone: "080-2345678", wage: 425,
			pattern: []attendance.Status{me, me, me, full, full, half, abs}},
	}
	return h.seed(ctx, crew, 2)
}

func (h *Handler) loadHarvestRushScenario(ctx context.Context) error {
	crew := []seedWorker{
		{name: "Ramesh Kumar", phone: "+91 98450 12345", wage: 550,
			pattern: []attendance.Status{full}},
		{name: "Lakshmi Devi", phone: "98860 55501", wage: 500,
			pattern: []attendance.Status{full, full, full, full, full, full, half}},
		{name: "Seasonal Hand 1", wage: 450,
			pattern: []attendance.Status{full, full, me, full, full, full, abs}},
		{name: "Seasonal Hand 2", wage: 450,
			pattern: []attendance.Status{full, half, full, half, full, full, abs}},
		{name: "Seasonal Hand 3", wage: 450,
			pattern: []attendance.Status{me, full, full, full, me, full, abs}},
	}
	return h.seed(ctx, crew, 2)
}

// seed creates crew and marks attendance for the last `months` months up to
// today, inclusive.
func (h *Handler) seed(ctx context.Context, crew []seedWorker, months int) error {
	today := attendance.Day(h.now())
	first := attendance.MonthOf(today).First().AddDate(0, -(months - 1), 0)

	for _, sw := range crew {
		in := attendance.NewWorker{Name: sw.name, DailyWage: sw.wage}
		if sw.phone != "" {
			phone := sw.phone
			in.Phone = &phone
		}
		worker, err := h.Store.CreateWorker(ctx, in)
		if err != nil {
			return fmt.Errorf("create %s: %w", sw.name, err)
		}

		i := 0
		for d := first; !d.After(today); d = d.Add(24 * time.Hour) {
			st := sw.pattern[i%len(sw.pattern)]
			i++
			if st == "" {
				continue
			}
			if err := h.Store.SetAttendance(ctx, worker.ID, attendance.FormatDate(d), st); err != nil {
				return fmt.Errorf("mark %s on %s: %w", sw.name, attendance.FormatDate(d), err)
			}
		}
	}
	return nil
}
