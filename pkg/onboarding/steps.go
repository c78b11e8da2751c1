// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"time"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

// Step is an onboarding step as seen by the client. CreateAccount never
// appears in server responses: an unauthenticated caller has no status to ask
// for.
type Step string

const (
	StepCreateAccount Step = "create_account"
	StepVerifyEmail   Step = "verify_email"
	StepChooseType    Step = "choose_type"
	StepDone          Step = "done"
)

// DeriveStep recomputes the current onboarding step from the identity's
// verification timestamp and the membership's tenant binding. The step is
// derived, never stored, so a client navigating to a later step URL gains
// nothing.
func DeriveStep(emailConfirmedAt *time.Time, membership *types.Membership) Step {
	if emailConfirmedAt == nil {
		return StepVerifyEmail
	}
	if membership != nil && membership.TenantID != nil {
		return StepDone
	}
	return StepChooseType
}
