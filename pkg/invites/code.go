// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// CodeAlphabet is the 32-symbol invite code alphabet: upper-case letters and
// digits minus the visually ambiguous 0, 1, O and I.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed invite code length, giving 32^8 ≈ 40 bits of entropy.
const CodeLength = 8

// NewCode draws a code uniformly from the alphabet. 256 is a multiple of 32,
// so indexing bytes modulo the alphabet size introduces no bias.
func NewCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}

	return string(buf), nil
}

// NormalizeCode maps user input onto the stored form: trimmed, upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCodeFormat reports whether a normalized code could have been issued.
func ValidCodeFormat(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			return false
		}
	}
	return true
}
