// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"strings"
	"testing"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("expected code of length %d, got %q", CodeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(CodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}

	// 1000 draws from a 32^8 space should essentially never collide.
	if len(seen) < 999 {
		t.Errorf("expected near-unique codes, got %d distinct out of 1000", len(seen))
	}
}

func TestNewCodeExcludesAmbiguousSymbols(t *testing.T) {
	for _, r := range "01OI" {
		if strings.ContainsRune(CodeAlphabet, r) {
			t.Errorf("alphabet must not contain ambiguous symbol %q", r)
		}
	}
	if len(CodeAlphabet) != 32 {
		t.Errorf("expected 32-symbol alphabet, got %d", len(CodeAlphabet))
	}
}

func TestNormalizeCode(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"already normalized", "ABCD2345", "ABCD2345"},
		{"lower case", "abcd2345", "ABCD2345"},
		{"surrounding whitespace", "  ABCD2345\n", "ABCD2345"},
		{"mixed", " abCD2345 ", "ABCD2345"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCode(tc.input); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestValidCodeFormat(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid", "ABCD2345", true},
		{"too short", "ABCD234", false},
		{"too long", "ABCD23456", false},
		{"contains zero", "ABCD2340", false},
		{"contains letter O", "ABCDO345", false},
		{"lower case not normalized", "abcd2345", false},
		{"empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidCodeFormat(tc.input); got != tc.expected {
				t.Errorf("ValidCodeFormat(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}
