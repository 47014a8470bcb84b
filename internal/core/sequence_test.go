package core_test

import (
	"testing"

	"orderhub/internal/core"
)

func TestFormatOrderNumber(t *testing.T) {
	tests := []struct {
		orgID int64
		year  int
		seq   int64
		want  string
	}{
		{1, 2026, 1, "ORD-1-2026-000001"},
		{1, 2026, 42, "ORD-1-2026-000042"},
		{7, 2025, 999999, "ORD-7-2025-999999"},
		{7, 2025, 1000000, "ORD-7-2025-1000000"}, // width grows past a million
	}
	for _, tt := range tests {
		if got := core.FormatOrderNumber(tt.orgID, tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatOrderNumber(%d, %d, %d) = %q, want %q", tt.orgID, tt.year, tt.seq, got, tt.want)
		}
	}
}
