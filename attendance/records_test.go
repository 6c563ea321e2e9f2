package attendance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/farm-ledger/attendance"
)

func rec(date string, st attendance.Status) attendance.Record {
	return attendance.Record{WorkerID: "w1", Date: date, Status: st}
}

// =============================================================================
// STATUS
// =============================================================================

func TestParseStatus(t *testing.T) {
	for _, s := range attendance.Statuses() {
		got, err := attendance.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.NotEmpty(t, got.Label())
		assert.NotEmpty(t, got.Short())
		assert.NotEmpty(t, got.Color())
	}

	for _, s := range []string{"", "Full", "present", "morning_evening"} {
		_, err := attendance.ParseStatus(s)
		assert.ErrorIs(t, err, attendance.ErrInvalidStatus, "input %q", s)
	}
}

func TestStatus_WireValues(t *testing.T) {
	assert.Equal(t, "full", string(attendance.StatusFull))
	assert.Equal(t, "half", string(attendance.StatusHalf))
	assert.Equal(t, "morningEvening", string(attendance.StatusMorningEvening))
	assert.Equal(t, "absent", string(attendance.StatusAbsent))
	assert.Equal(t, "ME", attendance.StatusMorningEvening.Short())
}

// =============================================================================
// FILTERING
// =============================================================================

func TestFilterRange_DropsBucketEdges(t *testing.T) {
	// GIVEN: two whole month buckets fetched for a range that starts and ends
	// mid-month
	records := []attendance.Record{
		rec("2024-01-30", attendance.StatusFull),
		rec("2024-01-31", attendance.StatusFull),
		rec("2024-02-01", attendance.StatusHalf),
		rec("2024-02-02", attendance.StatusHalf),
	}
	p := attendance.NewPeriod(
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	)

	// WHEN
	got := attendance.FilterRange(records, p)

	// THEN: only the two in-range days remain
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-31", got[0].Date)
	assert.Equal(t, "2024-02-01", got[1].Date)
}

func TestFilterRange_EmptyInput(t *testing.T) {
	got := attendance.FilterRange(nil, attendance.ThisMonth(time.Now()))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// =============================================================================
// ATTENDANCE MAP
// =============================================================================

func TestAttendanceMap_LastWriteWins(t *testing.T) {
	records := []attendance.Record{
		rec("2024-03-01", attendance.StatusFull),
		rec("2024-03-02", attendance.StatusAbsent),
		rec("2024-03-01", attendance.StatusHalf),
	}

	m := attendance.AttendanceMap(records)

	assert.Len(t, m, 2)
	assert.Equal(t, attendance.StatusHalf, m["2024-03-01"])
	assert.Equal(t, attendance.StatusAbsent, m["2024-03-02"])
}

func TestRecordsFromMap_Sorted(t *testing.T) {
	m := map[string]attendance.Status{
		"2024-03-03": attendance.StatusFull,
		"2024-03-01": attendance.StatusHalf,
		"2024-03-02": attendance.StatusMorningEvening,
	}

	got := attendance.RecordsFromMap("w1", m)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"},
		[]string{got[0].Date, got[1].Date, got[2].Date})
	assert.Equal(t, attendance.WorkerID("w1"), got[0].WorkerID)
}

func TestCheckRecord(t *testing.T) {
	assert.NoError(t, attendance.CheckRecord("2024-03-01", attendance.StatusFull))
	assert.ErrorIs(t, attendance.CheckRecord("03/01/2024", attendance.StatusFull), attendance.ErrInvalidDate)
	assert.ErrorIs(t, attendance.CheckRecord("2024-03-01", "late"), attendance.ErrInvalidStatus)
}

// =============================================================================
// WORKER INPUT
// =============================================================================

func TestNewWorker_Validate(t *testing.T) {
	phone := func(s string) *string { return &s }

	tests := []struct {
		name   string
		in     attendance.NewWorker
		fields []string
	}{
		{"valid", attendance.NewWorker{Name: "Ramesh", DailyWage: 500}, nil},
		{"valid with phone", attendance.NewWorker{Name: "Ramesh", Phone: phone("+91 98450-12345"), DailyWage: 500}, nil},
		{"blank phone is dropped", attendance.NewWorker{Name: "Ramesh", Phone: phone("   "), DailyWage: 500}, nil},
		{"blank name", attendance.NewWorker{Name: "  ", DailyWage: 500}, []string{"name"}},
		{"zero wage", attendance.NewWorker{Name: "Ramesh", DailyWage: 0}, []string{"daily_wage"}},
		{"negative wage", attendance.NewWorker{Name: "Ramesh", DailyWage: -10}, []string{"daily_wage"}},
		{"free-form phone is kept", attendance.NewWorker{Name: "Ramesh", Phone: phone("98450 12345 (home)"), DailyWage: 500}, nil},
		{"short extension", attendance.NewWorker{Name: "Ramesh", Phone: phone("12345"), DailyWage: 500}, nil},
		{"everything wrong", attendance.NewWorker{Phone: phone("12"), DailyWage: 0}, []string{"name", "daily_wage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, attendance.ErrValidation)
			assert.True(t, attendance.IsClientError(err))

			var verrs attendance.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			m := verrs.ToMap()
			assert.Len(t, m, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, m, f)
			}
		})
	}
}

func TestNewWorker_Normalize(t *testing.T) {
	p := "  98450 12345 "
	n := attendance.NewWorker{Name: "  Lakshmi ", Phone: &p, DailyWage: 450}.Normalize()

	assert.Equal(t, "Lakshmi", n.Name)
	require.NotNil(t, n.Phone)
	assert.Equal(t, "98450 12345", *n.Phone)
	assert.Equal(t, "  98450 12345 ", p, "caller's string is not modified")
}
