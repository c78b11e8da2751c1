// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ory "github.com/ory/client-go"
	"go.uber.org/mock/gomock"

	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package invites -destination ./mock_invites.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package invites -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package invites -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package invites -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go

const (
	testTenantID = "tenant-1"
	testAdminID  = "admin-1"
	testUserID   = "user-1"
)

func newTestService(t *testing.T) (*Service, *MockStorageInterface, *MockKratosClientInterface) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockStorage := NewMockStorageInterface(ctrl)
	mockKratos := NewMockKratosClientInterface(ctrl)

	s := NewService(mockStorage, mockKratos, 0, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
	return s, mockStorage, mockKratos
}

func adminMembership() *types.Membership {
	tenantID := testTenantID
	return &types.Membership{
		ID:       testAdminID,
		TenantID: &tenantID,
		Role:     types.RoleTenantAdmin,
		Active:   true,
	}
}

func testIdentity(email, name string) *ory.Identity {
	return &ory.Identity{
		Id:     testUserID,
		Traits: map[string]interface{}{"email": email, "name": name},
	}
}

func TestService_IssueInvite_Defaults(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
	mockStorage.EXPECT().CreateInvite(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, invite *types.Invite) (*types.Invite, error) {
			if invite.TenantID != testTenantID {
				t.Errorf("expected tenant %q, got %q", testTenantID, invite.TenantID)
			}
			if invite.Role != types.RoleOperational {
				t.Errorf("expected default role %q, got %q", types.RoleOperational, invite.Role)
			}
			if !ValidCodeFormat(invite.Code) {
				t.Errorf("generated code %q has invalid format", invite.Code)
			}
			if invite.InvitedEmail != nil {
				t.Errorf("expected open invite, got bound email %q", *invite.InvitedEmail)
			}
			want := time.Now().UTC().Add(DefaultValidityDays * 24 * time.Hour)
			if diff := invite.ExpiresAt.Sub(want); diff < -time.Minute || diff > time.Minute {
				t.Errorf("expected expiry near %v, got %v", want, invite.ExpiresAt)
			}
			return invite, nil
		})

	invite, err := s.IssueInvite(context.Background(), testTenantID, testAdminID, IssueOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invite == nil {
		t.Fatal("expected invite, got nil")
	}
}

func TestService_IssueInvite_ClampsValidity(t *testing.T) {
	testCases := []struct {
		name         string
		requested    int
		expectedDays int
	}{
		{"above maximum", 90, MaxValidityDays},
		{"below minimum", -3, MinValidityDays},
		{"within range", 10, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := newTestService(t)

			mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
			mockStorage.EXPECT().CreateInvite(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, invite *types.Invite) (*types.Invite, error) {
					want := time.Now().UTC().Add(time.Duration(tc.expectedDays) * 24 * time.Hour)
					if diff := invite.ExpiresAt.Sub(want); diff < -time.Minute || diff > time.Minute {
						t.Errorf("expected expiry near %v, got %v", want, invite.ExpiresAt)
					}
					return invite, nil
				})

			_, err := s.IssueInvite(context.Background(), testTenantID, testAdminID, IssueOptions{ValidityDays: tc.requested})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestService_IssueInvite_Authorization(t *testing.T) {
	otherTenant := "tenant-2"

	testCases := []struct {
		name        string
		membership  *types.Membership
		storageErr  error
		expectedErr error
	}{
		{
			name:        "no membership",
			storageErr:  storage.ErrNotFound,
			expectedErr: ErrPermissionDenied,
		},
		{
			name: "inactive membership",
			membership: func() *types.Membership {
				m := adminMembership()
				m.Active = false
				return m
			}(),
			expectedErr: ErrPermissionDenied,
		},
		{
			name: "operational role",
			membership: func() *types.Membership {
				m := adminMembership()
				m.Role = types.RoleOperational
				return m
			}(),
			expectedErr: ErrPermissionDenied,
		},
		{
			name: "admin of another tenant",
			membership: &types.Membership{
				ID:       testAdminID,
				TenantID: &otherTenant,
				Role:     types.RoleTenantAdmin,
				Active:   true,
			},
			expectedErr: ErrPermissionDenied,
		},
		{
			name: "platform master without tenant",
			membership: &types.Membership{
				ID:     testAdminID,
				Role:   types.RolePlatformMaster,
				Active: true,
			},
			expectedErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := newTestService(t)

			mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(tc.membership, tc.storageErr)
			if tc.expectedErr == nil {
				mockStorage.EXPECT().CreateInvite(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, invite *types.Invite) (*types.Invite, error) {
						return invite, nil
					})
			}

			_, err := s.IssueInvite(context.Background(), testTenantID, testAdminID, IssueOptions{})
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_IssueInvite_InvalidRole(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)

	_, err := s.IssueInvite(context.Background(), testTenantID, testAdminID, IssueOptions{Role: types.RolePlatformMaster})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_IssueInvite_RetriesOnCollision(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	dupErr := fmt.Errorf("invite code already in use: %w", storage.ErrDuplicateKey)

	mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
	gomock.InOrder(
		mockStorage.EXPECT().CreateInvite(gomock.Any(), gomock.Any()).Return(nil, dupErr),
		mockStorage.EXPECT().CreateInvite(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, invite *types.Invite) (*types.Invite, error) {
				return invite, nil
			}),
	)

	_, err := s.IssueInvite(context.Background(), testTenantID, testAdminID, IssueOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_IssueInvite_GenerationExhausted(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	dupErr := fmt.Errorf("invite code already in use: %w", storage.ErrDuplicateKey)

	mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
	mockStorage.EXPECT().CreateInvite(gomock.Any(), gomock.Any()).Return(nil, dupErr).Times(maxCodeAttempts)

	_, err := s.IssueInvite(context.Background(), testTenantID, testAdminID, IssueOptions{})
	if !errors.Is(err, ErrCodeGenerationExhausted) {
		t.Errorf("expected ErrCodeGenerationExhausted, got %v", err)
	}
}

func TestService_ValidateInvite(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)
	usedAt := time.Now().Add(-time.Hour)

	testCases := []struct {
		name           string
		code           string
		setupMocks     func(*MockStorageInterface)
		expectedValid  bool
		expectedReason string
	}{
		{
			name: "valid",
			code: "ABCD2345",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), "ABCD2345").
					Return(&types.Invite{Code: "ABCD2345", ExpiresAt: future}, nil)
			},
			expectedValid: true,
		},
		{
			name: "normalizes before lookup",
			code: "  abcd2345 ",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), "ABCD2345").
					Return(&types.Invite{Code: "ABCD2345", ExpiresAt: future}, nil)
			},
			expectedValid: true,
		},
		{
			name:           "malformed code skips storage",
			code:           "nope",
			setupMocks:     func(*MockStorageInterface) {},
			expectedValid:  false,
			expectedReason: ReasonNotFound,
		},
		{
			name: "unknown code",
			code: "ABCD2345",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), "ABCD2345").Return(nil, storage.ErrNotFound)
			},
			expectedValid:  false,
			expectedReason: ReasonNotFound,
		},
		{
			name: "used code",
			code: "ABCD2345",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), "ABCD2345").
					Return(&types.Invite{Code: "ABCD2345", ExpiresAt: future, UsedAt: &usedAt}, nil)
			},
			expectedValid:  false,
			expectedReason: ReasonAlreadyUsed,
		},
		{
			name: "expired wins over used",
			code: "ABCD2345",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), "ABCD2345").
					Return(&types.Invite{Code: "ABCD2345", ExpiresAt: past, UsedAt: &usedAt}, nil)
			},
			expectedValid:  false,
			expectedReason: ReasonExpired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := newTestService(t)
			tc.setupMocks(mockStorage)

			validation, err := s.ValidateInvite(context.Background(), tc.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if validation.Valid != tc.expectedValid {
				t.Errorf("expected valid=%v, got %v", tc.expectedValid, validation.Valid)
			}
			if validation.Reason != tc.expectedReason {
				t.Errorf("expected reason %q, got %q", tc.expectedReason, validation.Reason)
			}
		})
	}
}

func TestService_RedeemInvite_Success(t *testing.T) {
	s, mockStorage, mockKratos := newTestService(t)

	code := "ABCD2345"
	invite := &types.Invite{
		ID:        "invite-1",
		TenantID:  testTenantID,
		Code:      code,
		Role:      types.RoleOperational,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(invite, nil)
	mockKratos.EXPECT().GetIdentity(gomock.Any(), testUserID).Return(testIdentity("alice@example.com", "Alice"), nil)
	mockStorage.EXPECT().GetMembership(gomock.Any(), testUserID).Return(nil, storage.ErrNotFound)
	mockStorage.EXPECT().MarkInviteUsed(gomock.Any(), code, testUserID).Return(invite, nil)
	mockStorage.EXPECT().BindMembership(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, m *types.Membership) (*types.Membership, error) {
			if m.ID != testUserID {
				t.Errorf("expected membership id %q, got %q", testUserID, m.ID)
			}
			if m.TenantID == nil || *m.TenantID != testTenantID {
				t.Errorf("expected tenant %q, got %v", testTenantID, m.TenantID)
			}
			if m.Role != types.RoleOperational {
				t.Errorf("expected role %q, got %q", types.RoleOperational, m.Role)
			}
			if m.Email != "alice@example.com" || m.DisplayName != "Alice" {
				t.Errorf("unexpected identity traits: %q %q", m.Email, m.DisplayName)
			}
			if !m.Active {
				t.Error("expected active membership")
			}
			return m, nil
		})

	redemption, err := s.RedeemInvite(context.Background(), code, testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if redemption.TenantID != testTenantID || redemption.Role != types.RoleOperational {
		t.Errorf("unexpected redemption: %+v", redemption)
	}
}

func TestService_RedeemInvite_EmailBinding(t *testing.T) {
	invitedEmail := "Alice@EXAMPLE.com"

	testCases := []struct {
		name        string
		actualEmail string
		expectedErr error
	}{
		// The local part is case-sensitive, the domain is not.
		{"domain case differs", "Alice@example.com", nil},
		{"local part case differs", "alice@example.com", ErrEmailMismatch},
		{"different address", "bob@example.com", ErrEmailMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockKratos := newTestService(t)

			code := "ABCD2345"
			invite := &types.Invite{
				ID:           "invite-1",
				TenantID:     testTenantID,
				Code:         code,
				InvitedEmail: &invitedEmail,
				Role:         types.RoleOperational,
				ExpiresAt:    time.Now().Add(24 * time.Hour),
			}

			mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(invite, nil)
			mockKratos.EXPECT().GetIdentity(gomock.Any(), testUserID).Return(testIdentity(tc.actualEmail, "Alice"), nil)
			if tc.expectedErr == nil {
				mockStorage.EXPECT().GetMembership(gomock.Any(), testUserID).Return(nil, storage.ErrNotFound)
				mockStorage.EXPECT().MarkInviteUsed(gomock.Any(), code, testUserID).Return(invite, nil)
				mockStorage.EXPECT().BindMembership(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, m *types.Membership) (*types.Membership, error) {
						return m, nil
					})
			}

			_, err := s.RedeemInvite(context.Background(), code, testUserID)
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_RedeemInvite_Failures(t *testing.T) {
	code := "ABCD2345"
	boundTenant := "tenant-9"

	freshInvite := func() *types.Invite {
		return &types.Invite{
			ID:        "invite-1",
			TenantID:  testTenantID,
			Code:      code,
			Role:      types.RoleOperational,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
	}

	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface, *MockKratosClientInterface)
		expectedErr error
	}{
		{
			name: "expired code",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockKratosClientInterface) {
				invite := freshInvite()
				invite.ExpiresAt = time.Now().Add(-time.Hour)
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(invite, nil)
			},
			expectedErr: ErrExpired,
		},
		{
			name: "unknown code",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockKratosClientInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrNotFound,
		},
		{
			name: "identity already in a tenant",
			setupMocks: func(mockStorage *MockStorageInterface, mockKratos *MockKratosClientInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(freshInvite(), nil)
				mockKratos.EXPECT().GetIdentity(gomock.Any(), testUserID).Return(testIdentity("alice@example.com", "Alice"), nil)
				mockStorage.EXPECT().GetMembership(gomock.Any(), testUserID).
					Return(&types.Membership{ID: testUserID, TenantID: &boundTenant}, nil)
			},
			expectedErr: ErrAlreadyInTenant,
		},
		{
			name: "lost the redemption race",
			setupMocks: func(mockStorage *MockStorageInterface, mockKratos *MockKratosClientInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(freshInvite(), nil)
				mockKratos.EXPECT().GetIdentity(gomock.Any(), testUserID).Return(testIdentity("alice@example.com", "Alice"), nil)
				mockStorage.EXPECT().GetMembership(gomock.Any(), testUserID).Return(nil, storage.ErrNotFound)
				mockStorage.EXPECT().MarkInviteUsed(gomock.Any(), code, testUserID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrAlreadyUsed,
		},
		{
			name: "bind races a concurrent membership",
			setupMocks: func(mockStorage *MockStorageInterface, mockKratos *MockKratosClientInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(freshInvite(), nil)
				mockKratos.EXPECT().GetIdentity(gomock.Any(), testUserID).Return(testIdentity("alice@example.com", "Alice"), nil)
				mockStorage.EXPECT().GetMembership(gomock.Any(), testUserID).Return(nil, storage.ErrNotFound)
				mockStorage.EXPECT().MarkInviteUsed(gomock.Any(), code, testUserID).Return(freshInvite(), nil)
				mockStorage.EXPECT().BindMembership(gomock.Any(), gomock.Any()).Return(nil, storage.ErrAlreadyBound)
			},
			expectedErr: ErrAlreadyInTenant,
		},
		{
			name: "identity lookup fails",
			setupMocks: func(mockStorage *MockStorageInterface, mockKratos *MockKratosClientInterface) {
				mockStorage.EXPECT().GetInviteByCode(gomock.Any(), code).Return(freshInvite(), nil)
				mockKratos.EXPECT().GetIdentity(gomock.Any(), testUserID).Return(nil, errors.New("kratos unavailable"))
			},
			expectedErr: nil, // plain wrapped error, asserted below
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockKratos := newTestService(t)
			tc.setupMocks(mockStorage, mockKratos)

			_, err := s.RedeemInvite(context.Background(), code, testUserID)
			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
			} else if err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestService_RevokeInvite(t *testing.T) {
	inviteID := "invite-1"

	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
				mockStorage.EXPECT().DeleteInvite(gomock.Any(), testTenantID, inviteID).Return(nil)
			},
		},
		{
			name: "unknown or already used invite",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
				mockStorage.EXPECT().DeleteInvite(gomock.Any(), testTenantID, inviteID).Return(storage.ErrNotFound)
			},
			expectedErr: ErrNotFound,
		},
		{
			name: "permission denied",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := newTestService(t)
			tc.setupMocks(mockStorage)

			err := s.RevokeInvite(context.Background(), testTenantID, testAdminID, inviteID)
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_ListInvites(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	expected := []*types.Invite{{ID: "invite-1"}, {ID: "invite-2"}}
	mockStorage.EXPECT().GetMembership(gomock.Any(), testAdminID).Return(adminMembership(), nil)
	mockStorage.EXPECT().ListInvitesByTenantID(gomock.Any(), testTenantID).Return(expected, nil)

	invites, err := s.ListInvites(context.Background(), testTenantID, testAdminID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invites) != len(expected) {
		t.Errorf("expected %d invites, got %d", len(expected), len(invites))
	}
}
