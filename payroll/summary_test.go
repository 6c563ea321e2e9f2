package payroll_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/farm-ledger/attendance"
	"github.com/warp/farm-ledger/attendance/store"
	"github.com/warp/farm-ledger/payroll"
)

func TestSummarize(t *testing.T) {
	// GIVEN: two workers with March attendance and one stray April record
	ctx := context.Background()
	m := store.NewMemory()
	phone := "98450 12345"
	a, err := m.CreateWorker(ctx, attendance.NewWorker{Name: "Ramesh", Phone: &phone, DailyWage: 500})
	require.NoError(t, err)
	b, err := m.CreateWorker(ctx, attendance.NewWorker{Name: "Suresh", DailyWage: 400})
	require.NoError(t, err)

	mark(t, m, a.ID, "2024-03-01", attendance.StatusFull)
	mark(t, m, a.ID, "2024-03-02", attendance.StatusHalf)
	mark(t, m, b.ID, "2024-03-01", attendance.StatusMorningEvening)
	mark(t, m, b.ID, "2024-03-02", attendance.StatusAbsent)
	mark(t, m, b.ID, "2024-04-01", attendance.StatusFull)

	// WHEN
	s, err := payroll.Summarize(ctx, m, "2024-03")

	// THEN
	require.NoError(t, err)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, "Ramesh", s.Rows[0].Worker.Name)
	assert.Equal(t, "750.00", s.Rows[0].Totals.PayableDisplay())
	assert.Equal(t, "Suresh", s.Rows[1].Worker.Name)
	assert.Equal(t, "400.00", s.Rows[1].Totals.PayableDisplay())
	assert.Equal(t, "1150.00", s.GrandTotal.PayableDisplay())
	assert.Equal(t, "2.5", s.GrandTotal.EffectiveDaysDisplay())
}

func TestSummarize_NoWorkers(t *testing.T) {
	s, err := payroll.Summarize(context.Background(), store.NewMemory(), "2024-03")

	require.NoError(t, err)
	assert.Empty(t, s.Rows)
	assert.True(t, s.GrandTotal.Payable.IsZero())
}

func TestSummarize_FetchErrorFails(t *testing.T) {
	m, _ := newStore(t)

	_, err := payroll.Summarize(context.Background(), failingReader{Reader: m, failMonth: "2024-03"}, "2024-03")

	assert.ErrorIs(t, err, errBoom)
}

func TestSummary_WriteCSV(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	phone := "98450 12345"
	a, err := m.CreateWorker(ctx, attendance.NewWorker{Name: "Ramesh", Phone: &phone, DailyWage: 501})
	require.NoError(t, err)
	mark(t, m, a.ID, "2024-03-01", attendance.StatusFull)
	mark(t, m, a.ID, "2024-03-02", attendance.StatusHalf)

	s, err := payroll.Summarize(ctx, m, "2024-03")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "worker,phone,daily_wage,full_days,half_days,morning_evening_days,effective_days,total_payable", lines[0])
	assert.Equal(t, "Ramesh,98450 12345,501,1,1,0,1.5,751.50", lines[1])
}
