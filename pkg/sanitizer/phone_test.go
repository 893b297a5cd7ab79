package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{"e164 indian mobile", "+919876543210", "IN", "+919876543210"},
		{"local indian mobile", "98765 43210", "IN", "+919876543210"},
		{"national prefix", "09876543210", "IN", "+919876543210"},
		{"with dashes", "+91-98765-43210", "IN", "+919876543210"},
		{"foreign number keeps its country", "+1 (650) 253-0000", "IN", "+16502530000"},
		{"lowercase region", "9876543210", "in", "+919876543210"},
		{"surrounding spaces", "  +919876543210  ", "IN", "+919876543210"},
		{"empty", "", "IN", ""},
		{"letters", "call-me-maybe", "IN", ""},
		{"too short", "+1", "IN", ""},
		{"too long", "+1234567890123456789012345", "IN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input, tt.region); got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("98765 43210", "IN")
	if twice := NormalizePhone(once, "IN"); twice != once {
		t.Errorf("second pass changed %q to %q", once, twice)
	}
}
