// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"errors"
	"testing"
)

func TestNormalizeTaxID(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    string
		expectedErr error
	}{
		{
			name:     "punctuated form",
			input:    "12.345.678/0001-99",
			expected: "12345678000199",
		},
		{
			name:     "bare digits",
			input:    "12345678000199",
			expected: "12345678000199",
		},
		{
			name:     "whitespace around",
			input:    " 12.345.678/0001-99 ",
			expected: "12345678000199",
		},
		{
			name:        "too short",
			input:       "12.345.678/0001",
			expectedErr: ErrInvalidTaxID,
		},
		{
			name:        "too long",
			input:       "123456780001999",
			expectedErr: ErrInvalidTaxID,
		},
		{
			name:        "empty",
			input:       "",
			expectedErr: ErrInvalidTaxID,
		},
		{
			name:        "letters only",
			input:       "not-a-tax-id",
			expectedErr: ErrInvalidTaxID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTaxID(tc.input)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
