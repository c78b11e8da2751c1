// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"testing"
	"time"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

func TestDeriveStep(t *testing.T) {
	now := time.Now()
	tenantID := "tenant-1"

	testCases := []struct {
		name        string
		confirmedAt *time.Time
		membership  *types.Membership
		expected    Step
	}{
		{
			name:     "unverified without membership",
			expected: StepVerifyEmail,
		},
		{
			name:       "unverified wins over tenant binding",
			membership: &types.Membership{ID: "user-1", TenantID: &tenantID},
			expected:   StepVerifyEmail,
		},
		{
			name:        "verified and unbound",
			confirmedAt: &now,
			expected:    StepChooseType,
		},
		{
			name:        "verified with unbound membership",
			confirmedAt: &now,
			membership:  &types.Membership{ID: "user-1"},
			expected:    StepChooseType,
		},
		{
			name:        "verified and bound is terminal",
			confirmedAt: &now,
			membership:  &types.Membership{ID: "user-1", TenantID: &tenantID},
			expected:    StepDone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStep(tc.confirmedAt, tc.membership); got != tc.expected {
				t.Errorf("expected step %q, got %q", tc.expected, got)
			}
		})
	}
}
