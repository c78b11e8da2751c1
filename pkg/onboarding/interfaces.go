// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"context"
	"time"

	ory "github.com/ory/client-go"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type ServiceInterface interface {
	Status(ctx context.Context, identityID string) (*Status, error)
	WaitVerified(ctx context.Context, identityID string, timeout time.Duration) (bool, error)
	ResendVerification(ctx context.Context, identityID string) error
	CreateTenantForOwner(ctx context.Context, identityID string, req *CreateTenantRequest) (*TenantCreation, error)
	OAuthRedirectURL(state, returnTo string) string
	PortalURL(ctx context.Context, identityID string) (string, error)
	NotifyVerified(identityID string)
}

// StorageInterface defines the storage operations required by the onboarding
// package. It is a subset of the internal/storage interface.
type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantByTaxID(ctx context.Context, taxID string) (*types.Tenant, error)
	GetMembership(ctx context.Context, id string) (*types.Membership, error)
	BindMembership(ctx context.Context, m *types.Membership) (*types.Membership, error)
	GetPlanByID(ctx context.Context, id string) (*types.Plan, error)
	InitResourceUsage(ctx context.Context, tenantID, referenceMonth string, users int64) error
	AppendAudit(ctx context.Context, rec *types.AuditRecord) error
}

type KratosClientInterface interface {
	GetIdentity(ctx context.Context, id string) (*ory.Identity, error)
	CreateRecoveryLink(ctx context.Context, identityID string, expiresIn string) (string, string, error)
}

type BillingClientInterface interface {
	CreateCheckoutSession(ctx context.Context, tenantID, priceID, returnURL string) (*billing.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.PortalSession, error)
}

// Status is the poll target of the onboarding client. The step is recomputed
// on every call.
type Status struct {
	Step          Step    `json:"step"`
	EmailVerified bool    `json:"email_verified"`
	TenantID      *string `json:"tenant_id,omitempty"`
}

type CreateTenantRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=120"`
	TaxID  string `json:"tax_id" validate:"required"`
	PlanID string `json:"plan_id" validate:"required"`
}

// TenantCreation is the result of a successful owner signup. CheckoutURL is
// empty when the billing provider could not be reached; the client retries
// through the billing portal.
type TenantCreation struct {
	Tenant      *types.Tenant `json:"tenant"`
	CheckoutURL string        `json:"checkout_url,omitempty"`
}
