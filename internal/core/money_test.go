package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0.5", 50, false},
		{".5", 50, false},
		{"100", 10000, false},
		{" 7.25 ", 725, false},
		{"", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"12a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBankAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"12.50", 1250, false},
		{"£1,234.56", 123456, false},
		{"$99.99", 9999, false},
		{"-12.50", -1250, false},
		{"-12.50 EUR", -1250, false},
		{"1 234.00", 123400, false},
		{"", 0, true},
		{"GBP", 0, true},
		{"-", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBankAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBankAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBankAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1250, "12.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-730, "-7.30"},
		{123456, "1234.56"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	m := Money{Cents: 2000}
	if m.Units() != 20.0 {
		t.Errorf("Units() = %v, want 20.0", m.Units())
	}
}
