package provision

import (
	"strings"
	"testing"
)

func TestTableReportOK(t *testing.T) {
	tests := []struct {
		name   string
		report TableReport
		want   bool
	}{
		{
			name:   "clean table",
			report: TableReport{Table: "customer", WantRows: 1000, Rows: 1000, MinID: 1, MaxID: 1000},
			want:   true,
		},
		{
			name:   "missing rows",
			report: TableReport{Table: "customer", WantRows: 1000, Rows: 999, MinID: 1, MaxID: 1000},
			want:   false,
		},
		{
			name:   "gap shifts max above count",
			report: TableReport{Table: "order", WantRows: 10000, Rows: 10000, MinID: 1, MaxID: 10001},
			want:   false,
		},
		{
			name:   "ids not starting at one",
			report: TableReport{Table: "item", WantRows: 10, Rows: 10, MinID: 2, MaxID: 11},
			want:   false,
		},
		{
			name:   "orphaned references",
			report: TableReport{Table: "order", WantRows: 10000, Rows: 10000, MinID: 1, MaxID: 10000, Orphans: 3},
			want:   false,
		},
		{
			name:   "empty table",
			report: TableReport{Table: "customer", WantRows: 1000},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.OK(); got != tt.want {
				t.Errorf("OK() = %v, want %v for %+v", got, tt.want, tt.report)
			}
		})
	}
}

func TestReportOK(t *testing.T) {
	clean := TableReport{Table: "customer", WantRows: 10, Rows: 10, MinID: 1, MaxID: 10}
	broken := TableReport{Table: "order", WantRows: 10, Rows: 9, MinID: 1, MaxID: 10}

	if (&Report{}).OK() {
		t.Error("empty report should not verify")
	}
	if !(&Report{Tables: []TableReport{clean}}).OK() {
		t.Error("report with clean tables should verify")
	}
	if (&Report{Tables: []TableReport{clean, broken}}).OK() {
		t.Error("report with a broken table should not verify")
	}
}

func TestTableReportString(t *testing.T) {
	clean := TableReport{Table: "customer", WantRows: 10, Rows: 10, MinID: 1, MaxID: 10}
	if s := clean.String(); !strings.HasSuffix(s, ": ok") {
		t.Errorf("String() = %q, want ok suffix", s)
	}

	broken := TableReport{Table: "order", WantRows: 10, Rows: 9, MinID: 1, MaxID: 10}
	if s := broken.String(); !strings.Contains(s, "MISMATCH") {
		t.Errorf("String() = %q, want MISMATCH", s)
	}
}
