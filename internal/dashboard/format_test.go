package dashboard

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{178.42, "$178.42"},
		{1234.5, "$1,234.50"},
		{67542.18, "$67,542.18"},
		{1234567.89, "$1,234,567.89"},
		{0.62, "$0.62"},
		{0, "$0.00"},
		{-42.5, "-$42.50"},
		{999.999, "$1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.24, "+1.24%"},
		{-0.56, "-0.56%"},
		{0, "+0.00%"},
		{3.425, "+3.43%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2_450_000_000, "2.45B"},
		{2_450_000, "2.45M"},
		{12_300, "12.30K"},
		{950, "950.00"},
	}
	for _, tt := range tests {
		if got := FormatLargeNumber(tt.in); got != tt.want {
			t.Errorf("FormatLargeNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercentChange(t *testing.T) {
	if got := PercentChange(110, 100); got != 10 {
		t.Errorf("PercentChange(110, 100) = %v, want 10", got)
	}
	if got := PercentChange(90, 100); got != -10 {
		t.Errorf("PercentChange(90, 100) = %v, want -10", got)
	}
	if got := PercentChange(50, 0); got != 0 {
		t.Errorf("PercentChange(50, 0) = %v, want 0", got)
	}
}
