// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/Pmelo22/ClinicOps-sub000/internal/kratos"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
	"github.com/Pmelo22/ClinicOps-sub000/internal/validation"
)

const (
	// DefaultPollInterval is the server-side Kratos poll interval used while a
	// wait request is blocked on verification.
	DefaultPollInterval = 3 * time.Second

	// DefaultResendCooldown rate-limits manual verification resends. It is a
	// UX affordance; the identity provider is the real rate limiter.
	DefaultResendCooldown = 60 * time.Second

	DefaultTrialDays = 14

	// verificationLinkTTL is the lifetime of a re-sent verification link.
	verificationLinkTTL = "1h"
)

// Config carries the onboarding knobs taken from the environment.
type Config struct {
	PollInterval      time.Duration
	ResendCooldown    time.Duration
	TrialDays         int
	CheckoutReturnURL string
	OAuth             *oauth2.Config
}

func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	if out.ResendCooldown <= 0 {
		out.ResendCooldown = DefaultResendCooldown
	}
	if out.TrialDays <= 0 {
		out.TrialDays = DefaultTrialDays
	}
	return out
}

type Service struct {
	storage StorageInterface
	kratos  KratosClientInterface
	billing BillingClientInterface
	cfg     Config
	hub     *VerificationHub

	mu         sync.Mutex
	lastResend map[string]time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	kratosClient KratosClientInterface,
	billingClient BillingClientInterface,
	cfg *Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:    storage,
		kratos:     kratosClient,
		billing:    billingClient,
		cfg:        cfg.withDefaults(),
		hub:        NewVerificationHub(),
		lastResend: make(map[string]time.Time),
		tracer:     tracer,
		monitor:    monitor,
		logger:     logger,
	}
}

// Status recomputes the onboarding step from the identity provider's
// verification flag and the membership binding.
func (s *Service) Status(ctx context.Context, identityID string) (*Status, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Service.Status")
	defer span.End()

	identity, err := s.kratos.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityNotFound, err)
	}

	membership, err := s.storage.GetMembership(ctx, identityID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	confirmedAt := kratos.EmailConfirmedAt(identity)

	status := &Status{
		Step:          DeriveStep(confirmedAt, membership),
		EmailVerified: confirmedAt != nil,
	}
	if membership != nil {
		status.TenantID = membership.TenantID
	}

	return status, nil
}

// WaitVerified blocks until the identity's email is verified, the timeout
// elapses or the context is cancelled. A poll ticker races the push hub fed by
// the identity webhook; whichever fires first wins. A hub wakeup is confirmed
// against Kratos before reporting success.
func (s *Service) WaitVerified(ctx context.Context, identityID string, timeout time.Duration) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Service.WaitVerified")
	defer span.End()

	events, unsubscribe := s.hub.Subscribe(identityID)
	defer unsubscribe()

	verified, err := s.checkVerified(ctx, identityID)
	if err != nil {
		return false, err
	}
	if verified {
		return true, nil
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-events:
		case <-ticker.C:
		}

		verified, err := s.checkVerified(ctx, identityID)
		if err != nil {
			return false, err
		}
		if verified {
			return true, nil
		}
	}
}

func (s *Service) checkVerified(ctx context.Context, identityID string) (bool, error) {
	identity, err := s.kratos.GetIdentity(ctx, identityID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrIdentityNotFound, err)
	}
	return kratos.EmailConfirmedAt(identity) != nil, nil
}

// NotifyVerified wakes wait requests for an identity. Called by the identity
// webhook handler.
func (s *Service) NotifyVerified(identityID string) {
	s.hub.Notify(identityID)
}

// ResendVerification issues a fresh verification link, at most once per
// cooldown window per identity.
func (s *Service) ResendVerification(ctx context.Context, identityID string) error {
	ctx, span := s.tracer.Start(ctx, "onboarding.Service.ResendVerification")
	defer span.End()

	s.mu.Lock()
	if last, ok := s.lastResend[identityID]; ok && time.Since(last) < s.cfg.ResendCooldown {
		s.mu.Unlock()
		return ErrResendCooldown
	}
	s.mu.Unlock()

	if _, _, err := s.kratos.CreateRecoveryLink(ctx, identityID, verificationLinkTTL); err != nil {
		return fmt.Errorf("failed to resend verification: %w", err)
	}

	s.mu.Lock()
	s.lastResend[identityID] = time.Now()
	s.mu.Unlock()

	s.logger.Infof("resent verification link for identity %s", identityID)

	return nil
}

// CreateTenantForOwner turns a verified, unbound identity into the admin of a
// fresh trial tenant. The tenant insert and the membership bind are separate
// failure points: a failed bind deletes the tenant again before returning.
func (s *Service) CreateTenantForOwner(ctx context.Context, identityID string, req *CreateTenantRequest) (*TenantCreation, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Service.CreateTenantForOwner")
	defer span.End()

	identity, err := s.kratos.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityNotFound, err)
	}

	membership, err := s.storage.GetMembership(ctx, identityID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if membership != nil && membership.TenantID != nil {
		return nil, ErrAlreadyInTenant
	}

	taxID, err := validation.NormalizeTaxID(req.TaxID)
	if err != nil {
		return nil, err
	}

	// Pre-check is an optimization for a friendly error; the unique
	// constraint below is the actual guarantee.
	if _, err := s.storage.GetTenantByTaxID(ctx, taxID); err == nil {
		return nil, ErrDuplicateTaxID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	plan, err := s.storage.GetPlanByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	tenant, err := s.storage.CreateTenant(ctx, &types.Tenant{
		Name:        req.Name,
		TaxID:       taxID,
		Status:      types.StatusTrial,
		TrialEndsAt: time.Now().UTC().Add(time.Duration(s.cfg.TrialDays) * 24 * time.Hour),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrDuplicateTaxID
		}
		return nil, err
	}

	_, err = s.storage.BindMembership(ctx, &types.Membership{
		ID:          identityID,
		TenantID:    &tenant.ID,
		DisplayName: kratos.NameOf(identity),
		Email:       kratos.EmailOf(identity),
		Role:        types.RoleTenantAdmin,
		Active:      true,
	})
	if err != nil {
		// Compensation: the tenant has no dependents yet, deleting it is
		// always safe. An orphaned half-bound membership is not.
		if delErr := s.storage.DeleteTenant(ctx, tenant.ID); delErr != nil {
			s.logger.Errorf("failed to roll back tenant %s after bind failure: %v", tenant.ID, delErr)
		}
		if errors.Is(err, storage.ErrAlreadyBound) {
			return nil, ErrAlreadyInTenant
		}
		return nil, err
	}

	if err := s.storage.InitResourceUsage(ctx, tenant.ID, time.Now().UTC().Format("2006-01"), 1); err != nil {
		// Best effort: the usage aggregation job reconciles this later.
		s.logger.Warnf("failed to seed resource usage for tenant %s: %v", tenant.ID, err)
	}

	if err := s.storage.AppendAudit(ctx, &types.AuditRecord{
		TenantID: tenant.ID,
		Event:    "tenant_created",
		Detail:   fmt.Sprintf("created by identity %s on plan %s", identityID, plan.ID),
	}); err != nil {
		s.logger.Warnf("failed to append audit record for tenant %s: %v", tenant.ID, err)
	}

	creation := &TenantCreation{Tenant: tenant}

	session, err := s.billing.CreateCheckoutSession(ctx, tenant.ID, plan.BillingPriceID, s.cfg.CheckoutReturnURL)
	if err != nil {
		// The tenant exists and the trial runs; checkout can be restarted
		// from the billing portal.
		s.logger.Errorf("failed to start checkout for tenant %s: %v", tenant.ID, err)
	} else {
		creation.CheckoutURL = session.URL
	}

	s.logger.Infof("created tenant %s for identity %s", tenant.ID, identityID)

	return creation, nil
}

// OAuthRedirectURL builds the provider redirect for social signup. The
// return-to parameter carries the onboarding URL the provider sends the
// browser back to.
func (s *Service) OAuthRedirectURL(state, returnTo string) string {
	if s.cfg.OAuth == nil {
		return ""
	}
	return s.cfg.OAuth.AuthCodeURL(state, oauth2.SetAuthURLParam("return_to", returnTo))
}

// PortalURL opens a billing portal session for the caller's tenant.
func (s *Service) PortalURL(ctx context.Context, identityID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Service.PortalURL")
	defer span.End()

	membership, err := s.storage.GetMembership(ctx, identityID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoBillingAccount
		}
		return "", err
	}
	if membership.TenantID == nil {
		return "", ErrNoBillingAccount
	}

	tenant, err := s.storage.GetTenantByID(ctx, *membership.TenantID)
	if err != nil {
		return "", err
	}
	if tenant.BillingCustomerID == nil {
		return "", ErrNoBillingAccount
	}

	session, err := s.billing.CreatePortalSession(ctx, *tenant.BillingCustomerID, s.cfg.CheckoutReturnURL)
	if err != nil {
		return "", err
	}

	return session.URL, nil
}
