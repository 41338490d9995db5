package security

import "testing"

func TestMaskAccountNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"shorter than visible tail", "ABC", "***"},
		{"exactly visible tail", "1234", "****"},
		{"typical account", "ES9121000418450200051332", "********************1332"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAccountNumber(tt.input); got != tt.expected {
				t.Errorf("MaskAccountNumber(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("+33123456789"); got != "*********789" {
		t.Errorf("MaskPhone = %q", got)
	}
	if got := MaskPhone(""); got != "" {
		t.Errorf("expected empty mask, got %q", got)
	}
}
