package provision

import "fmt"

// TableReport holds the verification results for one seeded table.
type TableReport struct {
	Table    string
	WantRows int64
	Rows     int64
	MinID    int64
	MaxID    int64

	// Orphans counts foreign-key values that reference no parent row.
	// Always 0 for customer, which has no foreign key.
	Orphans int64
}

// OK reports whether the table matches the expected state: exact row count,
// ids forming the contiguous range [1, WantRows], and no orphaned references.
// Count equal to max id together with the primary key implies contiguity.
func (t TableReport) OK() bool {
	return t.Rows == t.WantRows &&
		t.MinID == 1 &&
		t.MaxID == t.WantRows &&
		t.Orphans == 0
}

func (t TableReport) String() string {
	status := "ok"
	if !t.OK() {
		status = fmt.Sprintf("MISMATCH (want %d rows, ids 1-%d)", t.WantRows, t.WantRows)
	}
	return fmt.Sprintf("%s: %d rows, ids %d-%d, %d orphaned references: %s",
		t.Table, t.Rows, t.MinID, t.MaxID, t.Orphans, status)
}

// Report is the result of verifying a provisioned target.
type Report struct {
	Tables []TableReport
}

// OK reports whether every table verified clean.
func (r *Report) OK() bool {
	for _, t := range r.Tables {
		if !t.OK() {
			return false
		}
	}
	return len(r.Tables) > 0
}
