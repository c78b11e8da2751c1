// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	ory "github.com/ory/client-go"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type ServiceInterface interface {
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	ListMembers(ctx context.Context, tenantID string) ([]*Member, error)
	SuspendTenant(ctx context.Context, tenantID, actor, reason string) error
	ReactivateTenant(ctx context.Context, tenantID, actor string) error
}

type StorageInterface interface {
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)
	SetTenantStatus(ctx context.Context, id, status string) error
	AppendAudit(ctx context.Context, rec *types.AuditRecord) error
}

type KratosClientInterface interface {
	GetIdentity(ctx context.Context, id string) (*ory.Identity, error)
}

// Member is a tenant membership joined with the identity provider's current
// view of the user.
type Member struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}
