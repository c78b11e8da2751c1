// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_webhooks.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go

func newTestService(t *testing.T) (*Service, *MockStorageInterface, *MockVerificationNotifierInterface) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockStorage := NewMockStorageInterface(ctrl)
	mockNotifier := NewMockVerificationNotifierInterface(ctrl)

	s := NewService(mockStorage, mockNotifier,
		tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())
	return s, mockStorage, mockNotifier
}

func checkoutEvent() *billing.Event {
	return &billing.Event{
		ID:   "evt_1",
		Type: billing.EventCheckoutCompleted,
		Data: billing.EventData{Object: billing.EventObject{
			ID:           "cs_1",
			Customer:     "cus_1",
			Subscription: "sub_1",
			Metadata:     map[string]string{"tenant_id": "tenant-1"},
		}},
	}
}

func TestService_HandleBillingEvent_CheckoutCompleted(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().ActivateTenantBilling(gomock.Any(), "tenant-1", "cus_1", "sub_1").Return(nil)
	mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *types.AuditRecord) error {
			if rec.TenantID != "tenant-1" || rec.Event != "billing_activated" {
				t.Errorf("unexpected audit record: %+v", rec)
			}
			return nil
		})

	if err := s.HandleBillingEvent(context.Background(), checkoutEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_HandleBillingEvent_CheckoutAckedWhenUnmatchable(t *testing.T) {
	testCases := []struct {
		name       string
		event      *billing.Event
		setupMocks func(*MockStorageInterface)
	}{
		{
			name: "missing tenant metadata",
			event: func() *billing.Event {
				e := checkoutEvent()
				e.Data.Object.Metadata = nil
				return e
			}(),
			setupMocks: func(*MockStorageInterface) {},
		},
		{
			name: "missing subscription",
			event: func() *billing.Event {
				e := checkoutEvent()
				e.Data.Object.Subscription = ""
				return e
			}(),
			setupMocks: func(*MockStorageInterface) {},
		},
		{
			name:  "tenant deleted",
			event: checkoutEvent(),
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().ActivateTenantBilling(gomock.Any(), "tenant-1", "cus_1", "sub_1").
					Return(storage.ErrNotFound)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := newTestService(t)
			tc.setupMocks(mockStorage)

			if err := s.HandleBillingEvent(context.Background(), tc.event); err != nil {
				t.Errorf("expected ack, got error: %v", err)
			}
		})
	}
}

func TestService_HandleBillingEvent_CheckoutStorageFailureIsRetried(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	mockStorage.EXPECT().ActivateTenantBilling(gomock.Any(), "tenant-1", "cus_1", "sub_1").
		Return(errors.New("connection reset"))

	if err := s.HandleBillingEvent(context.Background(), checkoutEvent()); err == nil {
		t.Error("expected an error so the provider redelivers, got nil")
	}
}

func TestService_HandleBillingEvent_SubscriptionUpdated(t *testing.T) {
	testCases := []struct {
		name           string
		providerStatus string
		expectedStatus string
	}{
		{"active", billing.ProviderStatusActive, types.StatusActive},
		{"past due", billing.ProviderStatusPastDue, types.StatusPastDue},
		{"anything else suspends", "incomplete_expired", types.StatusSuspended},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := newTestService(t)

			event := &billing.Event{
				ID:   "evt_2",
				Type: billing.EventSubscriptionUpdated,
				Data: billing.EventData{Object: billing.EventObject{ID: "sub_1", Status: tc.providerStatus}},
			}

			mockStorage.EXPECT().SetTenantStatusBySubscription(gomock.Any(), "sub_1", tc.expectedStatus).
				Return(&types.Tenant{ID: "tenant-1", Status: tc.expectedStatus}, nil)

			if err := s.HandleBillingEvent(context.Background(), event); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestService_HandleBillingEvent_SubscriptionDeleted(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	event := &billing.Event{
		ID:   "evt_3",
		Type: billing.EventSubscriptionDeleted,
		Data: billing.EventData{Object: billing.EventObject{ID: "sub_1"}},
	}

	mockStorage.EXPECT().ClearTenantSubscription(gomock.Any(), "sub_1").
		Return(&types.Tenant{ID: "tenant-1", Status: types.StatusSuspended}, nil)
	mockStorage.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *types.AuditRecord) error {
			if rec.Event != "subscription_cancelled" {
				t.Errorf("unexpected audit event: %q", rec.Event)
			}
			return nil
		})

	if err := s.HandleBillingEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_HandleBillingEvent_PaymentFailed(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	event := &billing.Event{
		ID:   "evt_4",
		Type: billing.EventInvoicePaymentFailed,
		Data: billing.EventData{Object: billing.EventObject{ID: "in_1", Subscription: "sub_1"}},
	}

	mockStorage.EXPECT().SetTenantStatusBySubscription(gomock.Any(), "sub_1", types.StatusPastDue).
		Return(&types.Tenant{ID: "tenant-1"}, nil)

	if err := s.HandleBillingEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_HandleBillingEvent_UnknownTypeIsAcked(t *testing.T) {
	s, _, _ := newTestService(t)

	event := &billing.Event{ID: "evt_5", Type: "charge.refunded"}

	if err := s.HandleBillingEvent(context.Background(), event); err != nil {
		t.Errorf("expected unknown event to be acked, got %v", err)
	}
}

func TestService_HandleBillingEvent_UnmatchedSubscriptionIsAcked(t *testing.T) {
	s, mockStorage, _ := newTestService(t)

	event := &billing.Event{
		ID:   "evt_6",
		Type: billing.EventSubscriptionUpdated,
		Data: billing.EventData{Object: billing.EventObject{ID: "sub_gone", Status: billing.ProviderStatusActive}},
	}

	mockStorage.EXPECT().SetTenantStatusBySubscription(gomock.Any(), "sub_gone", types.StatusActive).
		Return(nil, storage.ErrNotFound)

	if err := s.HandleBillingEvent(context.Background(), event); err != nil {
		t.Errorf("expected ack for unmatched subscription, got %v", err)
	}
}

func TestService_HandleIdentityVerified(t *testing.T) {
	s, _, mockNotifier := newTestService(t)

	mockNotifier.EXPECT().NotifyVerified("user-1")

	if err := s.HandleIdentityVerified(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_HandleIdentityVerified_EmptyID(t *testing.T) {
	s, _, _ := newTestService(t)

	if err := s.HandleIdentityVerified(context.Background(), ""); err == nil {
		t.Error("expected an error for empty identity id")
	}
}
