package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true}, // zero anchors are legal
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseSignedDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1.23", 123, true},
		{"-1.23", -123, true},
		{"+1.23", 123, true},
		{" -250 ", -25000, true},
		{"-", 0, false},
		{"--1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 500}
	b := Money{Cents: 150}
	if got := a.Add(b).Cents; got != 650 {
		t.Fatalf("Add: expected 650, got %d", got)
	}
	if got := a.Sub(b).Cents; got != 350 {
		t.Fatalf("Sub: expected 350, got %d", got)
	}
	if got := b.Sub(a).Cents; got != -350 {
		t.Fatalf("Sub below zero: expected -350, got %d", got)
	}
	if got := a.Neg().Cents; got != -500 {
		t.Fatalf("Neg: expected -500, got %d", got)
	}
	if (Money{Cents: 1234}).Units() != 12.34 {
		t.Fatalf("Units conversion wrong")
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{-1234, "-12.34"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
