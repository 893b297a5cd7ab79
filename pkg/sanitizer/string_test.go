package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Priya Sharma  ", "Priya Sharma"},
		{"collapse inner spaces", "Priya    Sharma", "Priya Sharma"},
		{"tabs and newlines", "Priya\t\nSharma", "Priya Sharma"},
		{"empty", "", ""},
		{"only whitespace", "  \t\n ", ""},
		{"keeps symbols", " Café & Banquet™ ", "Café & Banquet™"},
		{"devanagari", "  प्रिया   शर्मा ", "प्रिया शर्मा"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  Stage   near the window \n\n  vegetarian   menu  ")
	want := "Stage near the window\n\nvegetarian menu"
	if got != want {
		t.Errorf("NormalizeText() = %q, want %q", got, want)
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel("  Wedding   Reception "); got != "wedding reception" {
		t.Errorf("NormalizeLabel() = %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Priya@Example.COM "); got != "priya@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
