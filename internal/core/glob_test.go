package core

import "testing"

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"", "", true},
		{"", "x", false},
		{"tda-*", "tda-api", true},
		{"tda-*", "tda-", true},
		{"tda-*", "api-tda", false},
		{"*-api", "tda-api", true},
		{"*api*", "my-api-server", true},
		{"poc-?", "poc-1", true},
		{"poc-?", "poc-12", false},
		{"poc-?", "poc-", false},
		{"a*b*c", "axxbyyc", true},
		{"a*b*c", "abc", true},
		{"a*b*c", "acb", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		// case-insensitive
		{"TDA-*", "tda-api", true},
		{"tda-*", "TDA-API", true},
		{"Poc-?", "pOc-9", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			if got := globMatch(tt.pattern, tt.name); got != tt.want {
				t.Errorf("globMatch(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
			}
		})
	}
}
