package attendance

import "sort"

// FilterRange keeps the records whose date falls inside p. Month buckets are
// fetched whole, so records at a bucket's edges may fall outside the exact
// requested days and are dropped here.
func FilterRange(records []Record, p Period) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if p.ContainsDate(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// AttendanceMap indexes records by date. If a date appears more than once the
// later record wins.
func AttendanceMap(records []Record) map[string]Status {
	m := make(map[string]Status, len(records))
	for _, r := range records {
		m[r.Date] = r.Status
	}
	return m
}

// RecordsFromMap turns an attendance map back into a date-ordered record list
// for one worker.
func RecordsFromMap(workerID WorkerID, m map[string]Status) []Record {
	out := make([]Record, 0, len(m))
	for date, st := range m {
		out = append(out, Record{WorkerID: workerID, Date: date, Status: st})
	}
	SortByDate(out)
	return out
}

// SortByDate orders records by date, oldest first.
func SortByDate(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
}

// CheckRecord validates a date and status pair before it is written.
func CheckRecord(date string, status Status) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
