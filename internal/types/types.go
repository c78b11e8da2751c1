// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// Tenant statuses. Status is owned by the subscription reconciler after
// creation; the onboarding path only ever writes StatusTrial.
const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusPastDue   = "past_due"
	StatusSuspended = "suspended"
)

// Membership roles.
const (
	RoleOperational    = "operational"
	RoleTenantAdmin    = "tenant_admin"
	RolePlatformMaster = "platform_master"
)

type Tenant struct {
	ID                    string    `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	TaxID                 string    `db:"tax_id" json:"tax_id"`
	BillingCustomerID     *string   `db:"billing_customer_id" json:"billing_customer_id,omitempty"`
	BillingSubscriptionID *string   `db:"billing_subscription_id" json:"billing_subscription_id,omitempty"`
	Status                string    `db:"status" json:"status"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	TrialEndsAt           time.Time `db:"trial_ends_at" json:"trial_ends_at"`
}

// Membership binds an identity to at most one tenant. The ID is the identity
// provider's identity id; TenantID stays nil until the onboarding flow binds it.
type Membership struct {
	ID          string    `db:"id" json:"id"`
	TenantID    *string   `db:"tenant_id" json:"tenant_id,omitempty"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Email       string    `db:"email" json:"email"`
	Role        string    `db:"role" json:"role"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Invite is a single-use, time-limited code granting membership in a tenant.
// Redemption is terminal: UsedAt/UsedBy are written exactly once.
type Invite struct {
	ID           string     `db:"id" json:"id"`
	TenantID     string     `db:"tenant_id" json:"tenant_id"`
	Code         string     `db:"code" json:"code"`
	InvitedEmail *string    `db:"invited_email" json:"invited_email,omitempty"`
	Role         string     `db:"role" json:"role"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt       *time.Time `db:"used_at" json:"used_at,omitempty"`
	UsedBy       *string    `db:"used_by" json:"used_by,omitempty"`
	CreatedBy    string     `db:"created_by" json:"created_by"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type ResourceUsage struct {
	TenantID       string `db:"tenant_id" json:"tenant_id"`
	ReferenceMonth string `db:"reference_month" json:"reference_month"`
	Users          int64  `db:"users" json:"users"`
	Patients       int64  `db:"patients" json:"patients"`
	StorageMB      int64  `db:"storage_mb" json:"storage_mb"`
}

type Plan struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	BillingPriceID string `db:"billing_price_id" json:"billing_price_id"`
}

type AuditRecord struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Event     string    `db:"event" json:"event"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
