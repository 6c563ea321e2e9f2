/*
Package payroll turns attendance records into wage totals.

PURPOSE:
  Folds a worker's attendance records into day counts, an effective-day
  figure and a payable amount, and orchestrates the month-by-month fetch
  needed to do that for an arbitrary date range.

ARITHMETIC:
  effective = full + 0.5*half + 1.0*morningEvening
  payable   = full*wage + half*(wage/2) + morningEvening*wage

  Morning-evening counts as a whole day and pays a whole day's wage.
  Absent records count for nothing. Values are decimal.Decimal so a half
  day of an odd wage (e.g. 501/2 = 250.5) stays exact. Nothing is rounded
  here; callers round for display only.

SEE ALSO:
  - calculator.go: Date-range orchestration
  - summary.go: Monthly summary across all workers
*/
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/farm-ledger/attendance"
)

var (
	half = decimal.NewFromFloat(0.5)
	two  = decimal.NewFromInt(2)
)

// Totals is the derived payroll result for one worker. It is never stored.
type Totals struct {
	FullDays           int
	HalfDays           int
	MorningEveningDays int
	EffectiveDays      decimal.Decimal
	Payable            decimal.Decimal
}

// Compute folds records into totals for the given daily wage.
//
// Records are not deduplicated: if the same date appears twice both count.
// The fold is commutative, so record order doesn't matter.
func Compute(records []attendance.Record, dailyWage int64) Totals {
	var full, halfDays, me int

	for _, r := range records {
		switch r.Status {
		case attendance.StatusFull:
			full++
		case attendance.StatusHalf:
			halfDays++
		case attendance.StatusMorningEvening:
			me++
		case attendance.StatusAbsent:
		}
	}

	wage := decimal.NewFromInt(dailyWage)
	fullD := decimal.NewFromInt(int64(full))
	halfD := decimal.NewFromInt(int64(halfDays))
	meD := decimal.NewFromInt(int64(me))

	effective := fullD.Add(halfD.Mul(half)).Add(meD)
	payable := fullD.Mul(wage).
		Add(halfD.Mul(wage.Div(two))).
		Add(meD.Mul(wage))

	return Totals{
		FullDays:           full,
		HalfDays:           halfDays,
		MorningEveningDays: me,
		EffectiveDays:      effective,
		Payable:            payable,
	}
}

// Add combines two totals. Used for summary grand totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		FullDays:           t.FullDays + o.FullDays,
		HalfDays:           t.HalfDays + o.HalfDays,
		MorningEveningDays: t.MorningEveningDays + o.MorningEveningDays,
		EffectiveDays:      t.EffectiveDays.Add(o.EffectiveDays),
		Payable:            t.Payable.Add(o.Payable),
	}
}

// EffectiveDaysDisplay renders effective days to one decimal place.
func (t Totals) EffectiveDaysDisplay() string { return t.EffectiveDays.StringFixed(1) }

// PayableDisplay renders the payable amount to two decimal places.
func (t Totals) PayableDisplay() string { return t.Payable.StringFixed(2) }

// NetPayable subtracts an advance from a payable amount. The result may be
// negative; it is not clamped.
func NetPayable(payable, advance decimal.Decimal) decimal.Decimal {
	return payable.Sub(advance)
}
