// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

type Service struct {
	storage  StorageInterface
	notifier VerificationNotifierInterface
	tracer   tracing.TracingInterface
	monitor  monitoring.MonitorInterface
	logger   logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	notifier VerificationNotifierInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		notifier: notifier,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// HandleBillingEvent applies one billing event to the tenant it refers to.
// Every effect is a field-set keyed by a stable provider id, so redelivered
// events converge instead of double-applying. A nil return acknowledges the
// event; an error makes the provider redeliver.
func (s *Service) HandleBillingEvent(ctx context.Context, event *billing.Event) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleBillingEvent")
	defer span.End()

	switch event.Type {
	case billing.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case billing.EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event)
	case billing.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	case billing.EventInvoicePaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	default:
		// Unknown types are acked: a non-2xx would only provoke pointless
		// redelivery.
		s.logger.Debugf("ignoring billing event %s of unknown type %s", event.ID, event.Type)
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event *billing.Event) error {
	object := event.Data.Object

	tenantID := object.Metadata["tenant_id"]
	if tenantID == "" || object.Subscription == "" {
		s.logger.Warnf("checkout event %s lacks tenant metadata or subscription, acking", event.ID)
		return nil
	}

	err := s.storage.ActivateTenantBilling(ctx, tenantID, object.Customer, object.Subscription)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The tenant is gone; no redelivery will ever succeed.
			s.logger.Warnf("checkout event %s refers to unknown tenant %s, acking", event.ID, tenantID)
			return nil
		}
		return fmt.Errorf("failed to activate billing for tenant %s: %w", tenantID, err)
	}

	s.audit(ctx, tenantID, "billing_activated", fmt.Sprintf("subscription %s bound by event %s", object.Subscription, event.ID))
	s.logger.Infof("activated billing for tenant %s via event %s", tenantID, event.ID)

	return nil
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, event *billing.Event) error {
	object := event.Data.Object

	var status string
	switch object.Status {
	case billing.ProviderStatusActive:
		status = types.StatusActive
	case billing.ProviderStatusPastDue:
		status = types.StatusPastDue
	default:
		status = types.StatusSuspended
	}

	tenant, err := s.storage.SetTenantStatusBySubscription(ctx, object.ID, status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("subscription event %s matches no tenant, acking", event.ID)
			return nil
		}
		return fmt.Errorf("failed to update tenant status for subscription %s: %w", object.ID, err)
	}

	s.logger.Infof("tenant %s moved to %s by subscription event %s", tenant.ID, status, event.ID)

	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event *billing.Event) error {
	object := event.Data.Object

	tenant, err := s.storage.ClearTenantSubscription(ctx, object.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("deletion event %s matches no tenant, acking", event.ID)
			return nil
		}
		return fmt.Errorf("failed to clear subscription %s: %w", object.ID, err)
	}

	s.audit(ctx, tenant.ID, "subscription_cancelled", fmt.Sprintf("subscription %s removed by event %s", object.ID, event.ID))
	s.logger.Infof("suspended tenant %s after subscription deletion event %s", tenant.ID, event.ID)

	return nil
}

func (s *Service) handlePaymentFailed(ctx context.Context, event *billing.Event) error {
	object := event.Data.Object

	subscriptionID := object.Subscription
	if subscriptionID == "" {
		subscriptionID = object.ID
	}

	tenant, err := s.storage.SetTenantStatusBySubscription(ctx, subscriptionID, types.StatusPastDue)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("payment-failed event %s matches no tenant, acking", event.ID)
			return nil
		}
		return fmt.Errorf("failed to mark subscription %s past due: %w", subscriptionID, err)
	}

	s.logger.Infof("tenant %s marked past due by event %s", tenant.ID, event.ID)

	return nil
}

// HandleIdentityVerified wakes onboarding wait requests for the identity.
func (s *Service) HandleIdentityVerified(ctx context.Context, identityID string) error {
	_, span := s.tracer.Start(ctx, "webhooks.Service.HandleIdentityVerified")
	defer span.End()

	if identityID == "" {
		return fmt.Errorf("identity ID is empty")
	}

	s.notifier.NotifyVerified(identityID)
	s.logger.Debugf("identity %s reported verified", identityID)

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
