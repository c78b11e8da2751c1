// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"errors"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrAlreadyInTenant  = errors.New("identity already belongs to a tenant")
	ErrDuplicateTaxID   = errors.New("tax id already registered")
	ErrPlanNotFound     = errors.New("unknown plan")
	ErrResendCooldown   = errors.New("verification email recently sent")
	ErrNoBillingAccount = errors.New("tenant has no billing account yet")
)
