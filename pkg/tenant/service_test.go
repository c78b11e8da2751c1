// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"testing"

	ory "github.com/ory/client-go"
	"go.uber.org/mock/gomock"

	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tenant.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go

func newTestService(t *testing.T) (*Service, *MockStorageInterface, *MockKratosClientInterface) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockStorage := NewMockStorageInterface(ctrl)
	mockKratos := NewMockKratosClientInterface(ctrl)

	s := NewService(mockStorage, mockKratos,
		tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
	return s, mockStorage, mockKratos
}

func TestService_GetTenant(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").
		Return(&types.Tenant{ID: "tenant-1", Name: "North Clinic"}, nil)

	tenant, err := s.GetTenant(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.Name != "North Clinic" {
		t.Errorf("expected name North Clinic, got %q", tenant.Name)
	}
}

func TestService_GetTenant_NotFound(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().GetTenantByID(gomock.Any(), "tenant-x").
		Return(nil, storage.ErrNotFound)

	if _, err := s.GetTenant(context.Background(), "tenant-x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ListMembers(t *testing.T) {
	s, mockStorage, mockKratos := newTestService(t)

	tenantID := "tenant-1"
	memberships := []*types.Membership{
		{ID: "user-1", Email: "old@example.com", DisplayName: "Alice", Role: types.RoleTenantAdmin, Active: true},
		{ID: "user-2", Email: "bob@example.com", DisplayName: "Bob", Role: types.RoleOperational, Active: true},
	}

	mockStorage.EXPECT().GetTenantByID(gomock.Any(), tenantID).Return(&types.Tenant{ID: tenantID}, nil)
	mockStorage.EXPECT().ListMembersByTenantID(gomock.Any(), tenantID).Return(memberships, nil)

	// user-1 changed their email at the identity provider since binding.
	mockKratos.EXPECT().GetIdentity(gomock.Any(), "user-1").Return(&ory.Identity{
		Id:     "user-1",
		Traits: map[string]interface{}{"email": "new@example.com", "name": "Alice"},
	}, nil)
	// user-2 was deleted from the provider; the snapshot survives.
	mockKratos.EXPECT().GetIdentity(gomock.Any(), "user-2").Return(nil, errors.New("404 not found"))

	members, err := s.ListMembers(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Email != "new@example.com" {
		t.Errorf("expected provider email to win, got %q", members[0].Email)
	}
	if members[1].Email != "bob@example.com" {
		t.Errorf("expected stored email fallback, got %q", members[1].Email)
	}
	if members[1].Role != types.RoleOperational {
		t.Errorf("expected role %q, got %q", types.RoleOperational, members[1].Role)
	}
}

func TestService_ListMembers_TenantNotFound(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().GetTenantByID(gomock.Any(), "tenant-x").Return(nil, storage.ErrNotFound)

	if _, err := s.ListMembers(context.Background(), "tenant-x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_SuspendTenant(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	gomock.InOrder(
		mockStorage.EXPECT().SetTenantStatus(gomock.Any(), "tenant-1", types.StatusSuspended).Return(nil),
		mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *types.AuditRecord) error {
				if rec.TenantID != "tenant-1" || rec.Event != "tenant_suspended" {
					t.Errorf("unexpected audit record: %+v", rec)
				}
				return nil
			}),
	)

	if err := s.SuspendTenant(context.Background(), "tenant-1", "ops@platform", "nonpayment"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_SuspendTenant_NotFound(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().SetTenantStatus(gomock.Any(), "tenant-x", types.StatusSuspended).
		Return(storage.ErrNotFound)

	if err := s.SuspendTenant(context.Background(), "tenant-x", "ops@platform", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ReactivateTenant(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	gomock.InOrder(
		mockStorage.EXPECT().SetTenantStatus(gomock.Any(), "tenant-1", types.StatusActive).Return(nil),
		mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *types.AuditRecord) error {
				if rec.Event != "tenant_reactivated" {
					t.Errorf("unexpected audit event: %q", rec.Event)
				}
				return nil
			}),
	)

	if err := s.ReactivateTenant(context.Background(), "tenant-1", "ops@platform"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_ReactivateTenant_AuditFailureIsNotFatal(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().SetTenantStatus(gomock.Any(), "tenant-1", types.StatusActive).Return(nil)
	mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(errors.New("audit table locked"))

	if err := s.ReactivateTenant(context.Background(), "tenant-1", "ops@platform"); err != nil {
		t.Errorf("audit failure must not fail the operation, got %v", err)
	}
}

func TestService_ListTenants(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().ListTenants(gomock.Any()).
		Return([]*types.Tenant{{ID: "tenant-1"}, {ID: "tenant-2"}}, nil)

	tenants, err := s.ListTenants(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("expected 2 tenants, got %d", len(tenants))
	}
}
