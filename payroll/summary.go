package payroll

import (
	"context"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/warp/farm-ledger/attendance"
)

// =============================================================================
// MONTHLY SUMMARY - One row per worker for a calendar month
// =============================================================================

// SummaryRow is one worker's totals for the month.
type SummaryRow struct {
	Worker attendance.Worker
	Totals Totals
}

// Summary is the calendar page's monthly table.
type Summary struct {
	Month      attendance.MonthToken
	Rows       []SummaryRow
	GrandTotal Totals
}

// Summarize builds the monthly table for every worker. Each worker's records
// are indexed by date first, so a duplicated date counts once (last wins).
func Summarize(ctx context.Context, store attendance.Reader, month attendance.MonthToken) (*Summary, error) {
	workers, err := store.GetAllWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	s := &Summary{Month: month, Rows: make([]SummaryRow, 0, len(workers))}
	for _, w := range workers {
		records, err := store.GetAttendanceForMonth(ctx, w.ID, month)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attendance for %s: %w", w.ID, err)
		}
		deduped := attendance.RecordsFromMap(w.ID, attendance.AttendanceMap(records))

		totals := Compute(deduped, w.DailyWage)
		s.Rows = append(s.Rows, SummaryRow{Worker: w, Totals: totals})
		s.GrandTotal = s.GrandTotal.Add(totals)
	}
	return s, nil
}

// csvRow is the flat export shape of a summary row.
type csvRow struct {
	Worker             string `csv:"worker"`
	Phone              string `csv:"phone"`
	DailyWage          int64  `csv:"daily_wage"`
	FullDays           int    `csv:"full_days"`
	HalfDays           int    `csv:"half_days"`
	MorningEveningDays int    `csv:"morning_evening_days"`
	EffectiveDays      string `csv:"effective_days"`
	Payable            string `csv:"total_payable"`
}

// WriteCSV writes the summary as CSV, one line per worker.
func (s *Summary) WriteCSV(w io.Writer) error {
	rows := make([]*csvRow, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, &csvRow{
			Worker:             r.Worker.Name,
			Phone:              r.Worker.PhoneOrEmpty(),
			DailyWage:          r.Worker.DailyWage,
			FullDays:           r.Totals.FullDays,
			HalfDays:           r.Totals.HalfDays,
			MorningEveningDays: r.Totals.MorningEveningDays,
			EffectiveDays:      r.Totals.EffectiveDaysDisplay(),
			Payable:            r.Totals.PayableDisplay(),
		})
	}
	return gocsv.Marshal(&rows, w)
}
