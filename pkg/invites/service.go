// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pmelo22/ClinicOps-sub000/internal/kratos"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

const (
	// DefaultValidityDays applies when an issuance does not name a validity.
	DefaultValidityDays = 7

	// MinValidityDays and MaxValidityDays clamp the requested validity window.
	MinValidityDays = 1
	MaxValidityDays = 30

	// maxCodeAttempts bounds the generate-and-insert loop on code collisions.
	maxCodeAttempts = 10
)

type Service struct {
	storage         StorageInterface
	kratos          KratosClientInterface
	defaultValidity int
	tracer          tracing.TracingInterface
	monitor         monitoring.MonitorInterface
	logger          logging.LoggerInterface
}

// NewService builds the invite engine. defaultValidityDays applies when an
// issuance does not name a validity; zero or negative falls back to
// DefaultValidityDays.
func NewService(
	storage StorageInterface,
	kratos KratosClientInterface,
	defaultValidityDays int,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	if defaultValidityDays <= 0 {
		defaultValidityDays = DefaultValidityDays
	}

	return &Service{
		storage:         storage,
		kratos:          kratos,
		defaultValidity: defaultValidityDays,
		tracer:          tracer,
		monitor:         monitor,
		logger:          logger,
	}
}

// IssueInvite creates a single-use invite code for a tenant. The requesting
// membership must be an active tenant admin of that tenant or a platform
// master.
func (s *Service) IssueInvite(ctx context.Context, tenantID, requestedBy string, opts IssueOptions) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.IssueInvite")
	defer span.End()

	if err := s.authorizeManager(ctx, tenantID, requestedBy); err != nil {
		return nil, err
	}

	role := opts.Role
	if role == "" {
		role = types.RoleOperational
	}
	if role != types.RoleOperational && role != types.RoleTenantAdmin {
		return nil, ErrInvalidRole
	}

	validity := opts.ValidityDays
	if validity == 0 {
		validity = s.defaultValidity
	}
	if validity < MinValidityDays {
		validity = MinValidityDays
	}
	if validity > MaxValidityDays {
		validity = MaxValidityDays
	}

	invite := &types.Invite{
		TenantID:  tenantID,
		Role:      role,
		ExpiresAt: time.Now().UTC().Add(time.Duration(validity) * 24 * time.Hour),
		CreatedBy: requestedBy,
	}
	if opts.InvitedEmail != "" {
		email := opts.InvitedEmail
		invite.InvitedEmail = &email
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return nil, err
		}
		invite.Code = code

		created, err := s.storage.CreateInvite(ctx, invite)
		if err == nil {
			s.logger.Infof("issued invite %s for tenant %s with role %s", created.ID, tenantID, role)
			return created, nil
		}
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, err
		}
		s.logger.Warnf("invite code collision for tenant %s, attempt %d", tenantID, attempt+1)
	}

	return nil, ErrCodeGenerationExhausted
}

// ValidateInvite classifies a code without consuming it. An unknown or
// malformed code, a used code and an expired code each map to their own
// reason; expiry wins over use so that the caller always learns the code is
// dead for good.
func (s *Service) ValidateInvite(ctx context.Context, code string) (*Validation, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.ValidateInvite")
	defer span.End()

	code = NormalizeCode(code)
	if !ValidCodeFormat(code) {
		return &Validation{Valid: false, Reason: ReasonNotFound}, nil
	}

	invite, err := s.storage.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Validation{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	if time.Now().After(invite.ExpiresAt) {
		return &Validation{Valid: false, Reason: ReasonExpired}, nil
	}
	if invite.UsedAt != nil {
		return &Validation{Valid: false, Reason: ReasonAlreadyUsed}, nil
	}

	return &Validation{Valid: true, Invite: invite}, nil
}

// RedeemInvite consumes a code on behalf of an authenticated identity and
// binds that identity to the invite's tenant. The code is marked used with a
// conditional update before the membership is written, so two concurrent
// redemptions of the same code cannot both succeed; a failed bind rolls the
// whole transaction back and the code stays redeemable.
func (s *Service) RedeemInvite(ctx context.Context, code, identityID string) (*Redemption, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.RedeemInvite")
	defer span.End()

	code = NormalizeCode(code)

	validation, err := s.ValidateInvite(ctx, code)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, reasonError(validation.Reason)
	}

	identity, err := s.kratos.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity %q: %w", identityID, err)
	}
	email := kratos.EmailOf(identity)

	if validation.Invite.InvitedEmail != nil && !emailMatches(*validation.Invite.InvitedEmail, email) {
		s.logger.Security().AuthzFailure(identityID, "redeem invite bound to another email")
		return nil, ErrEmailMismatch
	}

	membership, err := s.storage.GetMembership(ctx, identityID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if membership != nil && membership.TenantID != nil {
		return nil, ErrAlreadyInTenant
	}

	invite, err := s.storage.MarkInviteUsed(ctx, code, identityID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Lost the race: someone consumed the code between validation
			// and the conditional update.
			return nil, ErrAlreadyUsed
		}
		return nil, err
	}

	_, err = s.storage.BindMembership(ctx, &types.Membership{
		ID:          identityID,
		TenantID:    &invite.TenantID,
		DisplayName: kratos.NameOf(identity),
		Email:       email,
		Role:        invite.Role,
		Active:      true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyBound) {
			return nil, ErrAlreadyInTenant
		}
		return nil, err
	}

	s.logger.Infof("identity %s redeemed invite %s into tenant %s", identityID, invite.ID, invite.TenantID)

	return &Redemption{TenantID: invite.TenantID, Role: invite.Role}, nil
}

// RevokeInvite deletes an unused invite. Used invites are part of the audit
// trail and cannot be revoked.
func (s *Service) RevokeInvite(ctx context.Context, tenantID, requestedBy, inviteID string) error {
	ctx, span := s.tracer.Start(ctx, "invites.Service.RevokeInvite")
	defer span.End()

	if err := s.authorizeManager(ctx, tenantID, requestedBy); err != nil {
		return err
	}

	if err := s.storage.DeleteInvite(ctx, tenantID, inviteID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.logger.Infof("revoked invite %s of tenant %s", inviteID, tenantID)

	return nil
}

// ListInvites returns every invite of a tenant, newest first.
func (s *Service) ListInvites(ctx context.Context, tenantID, requestedBy string) ([]*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.ListInvites")
	defer span.End()

	if err := s.authorizeManager(ctx, tenantID, requestedBy); err != nil {
		return nil, err
	}

	return s.storage.ListInvitesByTenantID(ctx, tenantID)
}

func (s *Service) authorizeManager(ctx context.Context, tenantID, requestedBy string) error {
	membership, err := s.storage.GetMembership(ctx, requestedBy)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Security().AuthzFailure(requestedBy, "manage invites without membership")
			return ErrPermissionDenied
		}
		return err
	}

	if !membership.Active {
		s.logger.Security().AuthzFailure(requestedBy, "manage invites with inactive membership")
		return ErrPermissionDenied
	}

	if membership.Role == types.RolePlatformMaster {
		return nil
	}

	if membership.Role != types.RoleTenantAdmin || membership.TenantID == nil || *membership.TenantID != tenantID {
		s.logger.Security().AuthzFailure(requestedBy, "manage invites for foreign tenant")
		return ErrPermissionDenied
	}

	return nil
}

func reasonError(reason string) error {
	switch reason {
	case ReasonAlreadyUsed:
		return ErrAlreadyUsed
	case ReasonExpired:
		return ErrExpired
	default:
		return ErrNotFound
	}
}

// emailMatches compares the local part case-sensitively and the domain
// case-insensitively, per RFC 5321.
func emailMatches(invited, actual string) bool {
	invLocal, invDomain, ok1 := splitEmail(invited)
	actLocal, actDomain, ok2 := splitEmail(actual)
	if !ok1 || !ok2 {
		return invited == actual
	}
	return invLocal == actLocal && strings.EqualFold(invDomain, actDomain)
}

func splitEmail(addr string) (local, domain string, ok bool) {
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return "", "", false
	}
	return addr[:at], addr[at+1:], true
}
