// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pmelo22/ClinicOps-sub000/internal/kratos"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type Service struct {
	storage StorageInterface
	kratos  KratosClientInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	kratosClient KratosClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		kratos:  kratosClient,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	return s.storage.ListTenants(ctx)
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	t, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// ListMembers joins memberships with the identity provider's current traits.
// The stored email is a snapshot taken at bind time; the provider is the
// source of truth when it is reachable.
func (s *Service) ListMembers(ctx context.Context, tenantID string) ([]*Member, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListMembers")
	defer span.End()

	if _, err := s.storage.GetTenantByID(ctx, tenantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	memberships, err := s.storage.ListMembersByTenantID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]*Member, 0, len(memberships))
	for _, m := range memberships {
		member := &Member{
			ID:          m.ID,
			Email:       m.Email,
			DisplayName: m.DisplayName,
			Role:        m.Role,
			Active:      m.Active,
		}

		identity, err := s.kratos.GetIdentity(ctx, m.ID)
		if err != nil {
			// The identity may have been deleted from the provider while the
			// membership row survives. Keep the snapshot.
			s.logger.Warnf("failed to get identity %s: %v", m.ID, err)
		} else {
			if email := kratos.EmailOf(identity); email != "" {
				member.Email = email
			}
			if name := kratos.NameOf(identity); name != "" {
				member.DisplayName = name
			}
		}

		members = append(members, member)
	}

	return members, nil
}

func (s *Service) SuspendTenant(ctx context.Context, tenantID, actor, reason string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.SuspendTenant")
	defer span.End()

	if err := s.storage.SetTenantStatus(ctx, tenantID, types.StatusSuspended); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to suspend tenant %s: %w", tenantID, err)
	}

	s.audit(ctx, tenantID, "tenant_suspended", fmt.Sprintf("suspended by %s: %s", actor, reason))
	s.logger.Infof("tenant %s suspended by %s", tenantID, actor)

	return nil
}

func (s *Service) ReactivateTenant(ctx context.Context, tenantID, actor string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ReactivateTenant")
	defer span.End()

	if err := s.storage.SetTenantStatus(ctx, tenantID, types.StatusActive); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to reactivate tenant %s: %w", tenantID, err)
	}

	s.audit(ctx, tenantID, "tenant_reactivated", fmt.Sprintf("reactivated by %s", actor))
	s.logger.Infof("tenant %s reactivated by %s", tenantID, actor)

	return nil
}

func (s *Service) audit(ctx context.Context, tenantID, event, detail string) {
	err := s.storage.AppendAudit(ctx, &types.AuditRecord{
		TenantID: tenantID,
		Event:    event,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warnf("failed to append audit record %s for tenant %s: %v", event, tenantID, err)
	}
}
