package service

import "testing"

func TestSinaSymbol(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"600000", "sh600000"},
		{"510300", "sh510300"},
		{"900901", "sh900901"},
		{"000001", "sz000001"},
		{"300750", "sz300750"},
		{"159915", "sz159915"},
		{"200011", "sz200011"},
		{"430047", "bj430047"},
		{"830799", "bj830799"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := SinaSymbol(tt.code); got != tt.want {
			t.Errorf("SinaSymbol(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestEastmoneySecID(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"600000", "1.600000"},
		{"510300", "1.510300"},
		{"000001", "0.000001"},
		{"159915", "0.159915"},
		{"430047", "0.430047"},
	}
	for _, tt := range tests {
		if got := EastmoneySecID(tt.code); got != tt.want {
			t.Errorf("EastmoneySecID(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
