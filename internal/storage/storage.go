// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Pmelo22/ClinicOps-sub000/internal/db"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

const tenantColumns = "id, name, tax_id, billing_customer_id, billing_subscription_id, status, created_at, trial_ends_at"

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func scanTenant(row sq.RowScanner) (*types.Tenant, error) {
	var t types.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.TaxID,
		&t.BillingCustomerID, &t.BillingSubscriptionID,
		&t.Status, &t.CreatedAt, &t.TrialEndsAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "tax_id", "status", "trial_ends_at").
		Values(id.String(), t.Name, t.TaxID, t.Status, t.TrialEndsAt).
		Suffix("RETURNING " + tenantColumns).
		QueryRowContext(ctx)

	created, err := scanTenant(row)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "tax id already registered")
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return created, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetTenantByTaxID(ctx context.Context, taxID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByTaxID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"tax_id": taxID})
}

func (s *Storage) GetTenantByBillingSubscriptionID(ctx context.Context, subscriptionID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByBillingSubscriptionID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"billing_subscription_id": subscriptionID})
}

func (s *Storage) getTenant(ctx context.Context, pred sq.Eq) (*types.Tenant, error) {
	row := s.db.Statement(ctx).
		Select(tenantColumns).
		From("tenants").
		Where(pred).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(tenantColumns).
		From("tenants").
		OrderBy("created_at DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

// DeleteTenant removes a tenant row. The onboarding flow uses it as the
// compensation step when membership binding fails after tenant creation.
func (s *Storage) DeleteTenant(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteTenant")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete("tenants").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	return nil
}

func (s *Storage) SetTenantStatus(ctx context.Context, id, status string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantStatus")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ActivateTenantBilling binds the billing identifiers delivered by a completed
// checkout and moves the tenant to active. The writes are plain overwrites so
// redelivered checkout events converge on the same row state.
func (s *Storage) ActivateTenantBilling(ctx context.Context, tenantID, customerID, subscriptionID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.ActivateTenantBilling")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("billing_customer_id", customerID).
		Set("billing_subscription_id", subscriptionID).
		Set("status", types.StatusActive).
		Where(sq.Eq{"id": tenantID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to activate tenant billing: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) SetTenantStatusBySubscription(ctx context.Context, subscriptionID, status string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantStatusBySubscription")
	defer span.End()

	row := s.db.Statement(ctx).
		Update("tenants").
		Set("status", status).
		Where(sq.Eq{"billing_subscription_id": subscriptionID}).
		Suffix("RETURNING " + tenantColumns).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update tenant by subscription: %w", err)
	}

	return t, nil
}

func (s *Storage) ClearTenantSubscription(ctx context.Context, subscriptionID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ClearTenantSubscription")
	defer span.End()

	row := s.db.Statement(ctx).
		Update("tenants").
		Set("status", types.StatusSuspended).
		Set("billing_subscription_id", nil).
		Where(sq.Eq{"billing_subscription_id": subscriptionID}).
		Suffix("RETURNING " + tenantColumns).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to clear tenant subscription: %w", err)
	}

	return t, nil
}
