package errors

import (
	"strings"
	"testing"
)

func TestValidateTaxonLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Homo_sapiens", false},
		{"digits", "A12", false},
		{"dot and dash", "sp.-1", false},

		{"empty", "", true},
		{"paren", "a(b", true},
		{"comma", "a,b", true},
		{"colon", "a:0.1", true},
		{"hash", "H#1", true},
		{"control char", "a\x01b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaxonLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaxonLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNewick) {
				t.Errorf("ValidateTaxonLabel(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNewick)
			}
		})
	}
}

func TestValidateNewick(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"binary", "((A,B),C);", false},
		{"whitespace", "  (A,(B,C));\n", false},
		{"single leaf", "A;", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"no semicolon", "(A,B)", true},
		{"unclosed", "((A,B),C;", true},
		{"close first", ")A,B(;", true},
		{"too large", "(" + strings.Repeat("A,", MaxNewickBytes/2) + "B);", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewick(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNewick() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateResultID(t *testing.T) {
	if err := ValidateResultID("0b4c5d1e-9a2f-4c3b-8e7d-6f5a4b3c2d1e"); err != nil {
		t.Errorf("valid id rejected: %v", err)
	}
	for _, bad := range []string{"", "abc", "0B4C5D1E-9A2F-4C3B-8E7D-6F5A4B3C2D1E", "../0b4c5d1e-9a2f-4c3b-8e7d-6f5a4b3c2d1e"} {
		if err := ValidateResultID(bad); err == nil {
			t.Errorf("ValidateResultID(%q) = nil, want error", bad)
		}
	}
}
