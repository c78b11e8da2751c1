// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"context"

	ory "github.com/ory/client-go"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type ServiceInterface interface {
	IssueInvite(ctx context.Context, tenantID, requestedBy string, opts IssueOptions) (*types.Invite, error)
	ValidateInvite(ctx context.Context, code string) (*Validation, error)
	RedeemInvite(ctx context.Context, code, identityID string) (*Redemption, error)
	RevokeInvite(ctx context.Context, tenantID, requestedBy, inviteID string) error
	ListInvites(ctx context.Context, tenantID, requestedBy string) ([]*types.Invite, error)
}

// StorageInterface defines the storage operations required by the invites package.
// It is a subset of the internal/storage interface.
type StorageInterface interface {
	CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByCode(ctx context.Context, code string) (*types.Invite, error)
	MarkInviteUsed(ctx context.Context, code, usedBy string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, tenantID, id string) error
	ListInvitesByTenantID(ctx context.Context, tenantID string) ([]*types.Invite, error)
	GetMembership(ctx context.Context, id string) (*types.Membership, error)
	BindMembership(ctx context.Context, m *types.Membership) (*types.Membership, error)
}

type KratosClientInterface interface {
	GetIdentity(ctx context.Context, id string) (*ory.Identity, error)
}

// IssueOptions carries the optional parameters of an invite issuance.
type IssueOptions struct {
	InvitedEmail string
	Role         string
	ValidityDays int
}

// Validation reasons, also used as wire values for the live-validation endpoint.
const (
	ReasonNotFound    = "not_found"
	ReasonAlreadyUsed = "already_used"
	ReasonExpired     = "expired"
)

type Validation struct {
	Valid  bool          `json:"valid"`
	Reason string        `json:"reason,omitempty"`
	Invite *types.Invite `json:"invite,omitempty"`
}

type Redemption struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}
