// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

const membershipColumns = "id, tenant_id, display_name, email, role, active, created_at, updated_at"

func scanMembership(row sq.RowScanner) (*types.Membership, error) {
	var m types.Membership
	err := row.Scan(
		&m.ID, &m.TenantID, &m.DisplayName, &m.Email,
		&m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) GetMembership(ctx context.Context, id string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(membershipColumns).
		From("memberships").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// BindMembership inserts the membership or, when a row for the identity
// already exists, binds it to the tenant only if it is still unbound.
// The tenant_id IS NULL predicate is what keeps a membership on a single
// tenant under concurrent onboarding attempts: a second bind finds the
// predicate false, updates nothing and surfaces ErrAlreadyBound.
func (s *Storage) BindMembership(ctx context.Context, m *types.Membership) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.BindMembership")
	defer span.End()

	row := s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "tenant_id", "display_name", "email", "role", "active").
		Values(m.ID, m.TenantID, m.DisplayName, m.Email, m.Role, m.Active).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET tenant_id = EXCLUDED.tenant_id,
			    role = EXCLUDED.role,
			    active = EXCLUDED.active,
			    updated_at = now()
			WHERE memberships.tenant_id IS NULL
			RETURNING ` + membershipColumns).
		QueryRowContext(ctx)

	bound, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadyBound
		}
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "tenant does not exist")
		}
		return nil, fmt.Errorf("failed to bind membership: %w", err)
	}

	return bound, nil
}

func (s *Storage) ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembersByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(membershipColumns).
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}
