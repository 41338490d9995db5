package sequence

import "testing"

func TestFormat_Render(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		n        int
		expected string
	}{
		{name: "pads to width", format: Format{Padding: 4, Max: 9999}, n: 41, expected: "0041"},
		{name: "first number", format: Format{Padding: 4, Max: 9999}, n: 1, expected: "0001"},
		{name: "full width", format: Format{Padding: 4, Max: 9999}, n: 9999, expected: "9999"},
		{name: "wider format", format: Format{Padding: 6, Max: 999999}, n: 41, expected: "000041"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Render(tt.n); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormat_Matches(t *testing.T) {
	format := Format{Padding: 4, Max: 9999}

	tests := []struct {
		candidate string
		expected  bool
	}{
		{"0041", true},
		{"9999", true},
		{"0000", true},
		{"041", false},
		{"00411", false},
		{"00A1", false},
		{"-041", false},
		{" 0041", false},
		{"", false},
		{"00４1", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			if got := format.Matches(tt.candidate); got != tt.expected {
				t.Errorf("Matches(%q): expected %v, got %v", tt.candidate, tt.expected, got)
			}
		})
	}
}
