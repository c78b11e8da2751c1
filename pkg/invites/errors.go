// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"errors"
)

var (
	ErrPermissionDenied = errors.New("membership is not allowed to manage invites for this tenant")
	ErrNotFound         = errors.New("invite code not found")
	ErrAlreadyUsed      = errors.New("invite code already used")
	ErrExpired          = errors.New("invite code expired")
	ErrEmailMismatch    = errors.New("invite is bound to a different email address")
	ErrAlreadyInTenant  = errors.New("identity already belongs to a tenant")
	ErrInvalidRole      = errors.New("invalid role for an invite")

	// ErrCodeGenerationExhausted is terminal: ten collisions in a 32^8 space
	// means something is very wrong with the code table, not bad luck.
	ErrCodeGenerationExhausted = errors.New("could not generate a unique invite code")
)
