// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type ServiceInterface interface {
	HandleBillingEvent(ctx context.Context, event *billing.Event) error
	HandleIdentityVerified(ctx context.Context, identityID string) error
}

// StorageInterface defines the storage operations required by the webhooks
// package. It is a subset of the internal/storage interface.
type StorageInterface interface {
	ActivateTenantBilling(ctx context.Context, tenantID, customerID, subscriptionID string) error
	SetTenantStatusBySubscription(ctx context.Context, subscriptionID, status string) (*types.Tenant, error)
	ClearTenantSubscription(ctx context.Context, subscriptionID string) (*types.Tenant, error)
	AppendAudit(ctx context.Context, rec *types.AuditRecord) error
}

// VerificationNotifierInterface wakes onboarding wait requests when the
// identity provider reports a verified address.
type VerificationNotifierInterface interface {
	NotifyVerified(identityID string)
}
