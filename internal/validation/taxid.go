// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"errors"
	"strings"
)

const taxIDLength = 14

var ErrInvalidTaxID = errors.New("tax id must contain exactly 14 digits")

// NormalizeTaxID strips punctuation from a clinic tax id ("12.345.678/0001-99"
// and the like) and returns the bare 14-digit form used for uniqueness checks.
func NormalizeTaxID(raw string) (string, error) {
	var b strings.Builder
	b.Grow(taxIDLength)

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if len(normalized) != taxIDLength {
		return "", ErrInvalidTaxID
	}

	return normalized, nil
}
