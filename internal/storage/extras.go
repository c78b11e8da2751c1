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

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

// InitResourceUsage seeds the first usage snapshot for a tenant. Conflicts are
// ignored: the usage aggregation job owns this table after creation.
func (s *Storage) InitResourceUsage(ctx context.Context, tenantID, referenceMonth string, users int64) error {
	ctx, span := s.tracer.Start(ctx, "storage.InitResourceUsage")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Insert("resource_usage").
		Columns("tenant_id", "reference_month", "users", "patients", "storage_mb").
		Values(tenantID, referenceMonth, users, 0, 0).
		Suffix("ON CONFLICT (tenant_id, reference_month) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to init resource usage: %w", err)
	}

	return nil
}

func (s *Storage) AppendAudit(ctx context.Context, rec *types.AuditRecord) error {
	ctx, span := s.tracer.Start(ctx, "storage.AppendAudit")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate audit ID: %w", err)
	}

	_, err = s.db.Statement(ctx).
		Insert("audit_records").
		Columns("id", "tenant_id", "event", "detail").
		Values(id.String(), rec.TenantID, rec.Event, rec.Detail).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

func (s *Storage) GetPlanByID(ctx context.Context, id string) (*types.Plan, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPlanByID")
	defer span.End()

	var p types.Plan
	err := s.db.Statement(ctx).
		Select("id", "name", "billing_price_id").
		From("plans").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.Name, &p.BillingPriceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &p, nil
}

func (s *Storage) ListPlans(ctx context.Context) ([]*types.Plan, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListPlans")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "name", "billing_price_id").
		From("plans").
		OrderBy("id ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*types.Plan
	for rows.Next() {
		var p types.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.BillingPriceID); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return plans, nil
}
