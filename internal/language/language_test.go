package language

import "testing"

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"spa", "es"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"jpn", "ja"},
		{"chi", "zh"},
		{"zho", "zh"},
		{"dut", "nl"},
		{"und", ""},
		{"unknown", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.expected {
			t.Fatalf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"eng", "eng"},
		{"fre", "fra"},
		{"ger", "deu"},
		{"zh", "zho"},
		{"", "und"},
		{"unknown", "und"},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.expected {
			t.Fatalf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"eng", "English"},
		{"en", "English"},
		{"ger", "German"},
		{"jpn", "Japanese"},
		{"", "Unknown"},
		{"unknown", "Unknown"},
		{"und", "Unknown"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Fatalf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("eng", "en") || !Equal("fre", "fra") || !Equal("chi", "zh") {
		t.Fatal("expected equivalent codes to match")
	}
	if Equal("eng", "jpn") {
		t.Fatal("different languages should not match")
	}
	if !Equal("unknown", "UNKNOWN") {
		t.Fatal("unrecognized codes compare case-insensitively")
	}
}
