package engine

import (
	"strings"
	"testing"
)

func TestFormatMetrics(t *testing.T) {
	before := GetMetrics()["summaries"]
	IncrSummaries()
	if got := GetMetrics()["summaries"]; got != before+1 {
		t.Errorf("summaries = %d, want %d", got, before+1)
	}

	out := FormatMetrics()
	for _, k := range metricKeys {
		if !strings.Contains(out, k+" ") {
			t.Errorf("FormatMetrics() missing %q", k)
		}
	}
}
