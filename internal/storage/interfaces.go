// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantByTaxID(ctx context.Context, taxID string) (*types.Tenant, error)
	GetTenantByBillingSubscriptionID(ctx context.Context, subscriptionID string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
	SetTenantStatus(ctx context.Context, id, status string) error
	ActivateTenantBilling(ctx context.Context, tenantID, customerID, subscriptionID string) error
	SetTenantStatusBySubscription(ctx context.Context, subscriptionID, status string) (*types.Tenant, error)
	ClearTenantSubscription(ctx context.Context, subscriptionID string) (*types.Tenant, error)

	GetMembership(ctx context.Context, id string) (*types.Membership, error)
	BindMembership(ctx context.Context, m *types.Membership) (*types.Membership, error)
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)

	CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByCode(ctx context.Context, code string) (*types.Invite, error)
	MarkInviteUsed(ctx context.Context, code, usedBy string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, tenantID, id string) error
	ListInvitesByTenantID(ctx context.Context, tenantID string) ([]*types.Invite, error)

	InitResourceUsage(ctx context.Context, tenantID, referenceMonth string, users int64) error
	AppendAudit(ctx context.Context, rec *types.AuditRecord) error

	GetPlanByID(ctx context.Context, id string) (*types.Plan, error)
	ListPlans(ctx context.Context) ([]*types.Plan, error)
}
