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

const inviteColumns = "id, tenant_id, code, invited_email, role, expires_at, used_at, used_by, created_by, created_at"

func scanInvite(row sq.RowScanner) (*types.Invite, error) {
	var i types.Invite
	err := row.Scan(
		&i.ID, &i.TenantID, &i.Code, &i.InvitedEmail, &i.Role,
		&i.ExpiresAt, &i.UsedAt, &i.UsedBy, &i.CreatedBy, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Storage) CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvite")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("invites").
		Columns("id", "tenant_id", "code", "invited_email", "role", "expires_at", "created_by").
		Values(id.String(), invite.TenantID, invite.Code, invite.InvitedEmail, invite.Role, invite.ExpiresAt, invite.CreatedBy).
		Suffix("RETURNING " + inviteColumns).
		QueryRowContext(ctx)

	created, err := scanInvite(row)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "invite code already in use")
		}
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "tenant does not exist")
		}
		return nil, fmt.Errorf("failed to insert invite: %w", err)
	}

	return created, nil
}

// GetInviteByCode returns the invite a user-entered code refers to. Codes may
// recur across redeemed invites, so the unused row wins over historical ones.
func (s *Storage) GetInviteByCode(ctx context.Context, code string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInviteByCode")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(inviteColumns).
		From("invites").
		Where(sq.Eq{"code": code}).
		OrderBy("(used_at IS NULL) DESC", "created_at DESC").
		Limit(1).
		QueryRowContext(ctx)

	i, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return i, nil
}

// MarkInviteUsed is the redemption serialization point: the used_at IS NULL
// predicate guarantees that of two concurrent redemptions exactly one update
// succeeds. The loser gets ErrNotFound and must not touch memberships.
func (s *Storage) MarkInviteUsed(ctx context.Context, code, usedBy string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.MarkInviteUsed")
	defer span.End()

	row := s.db.Statement(ctx).
		Update("invites").
		Set("used_at", sq.Expr("now()")).
		Set("used_by", usedBy).
		Where(sq.Eq{"code": code, "used_at": nil}).
		Suffix("RETURNING " + inviteColumns).
		QueryRowContext(ctx)

	i, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark invite used: %w", err)
	}

	return i, nil
}

// DeleteInvite removes an unused invite of a tenant. Used invites are kept
// as part of the redemption history.
func (s *Storage) DeleteInvite(ctx context.Context, tenantID, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteInvite")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("invites").
		Where(sq.Eq{"id": id, "tenant_id": tenantID, "used_at": nil}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
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

func (s *Storage) ListInvitesByTenantID(ctx context.Context, tenantID string) ([]*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListInvitesByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(inviteColumns).
		From("invites").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*types.Invite
	for rows.Next() {
		i, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return invites, nil
}
