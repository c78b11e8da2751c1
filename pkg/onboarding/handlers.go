// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Pmelo22/ClinicOps-sub000/internal/identity"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/validation"
)

const (
	// defaultWaitTimeout bounds a wait request; clients long-poll in rounds.
	defaultWaitTimeout = 30 * time.Second
	maxWaitTimeout     = 2 * time.Minute
)

type API struct {
	service  ServiceInterface
	validate *validator.Validate
	tracer   tracing.TracingInterface
	logger   logging.LoggerInterface
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		logger:   logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/onboarding/status", a.status)
	mux.Get("/api/v0/onboarding/wait", a.wait)
	mux.Post("/api/v0/onboarding/resend", a.resend)
	mux.Post("/api/v0/onboarding/tenant", a.createTenant)
	mux.Get("/api/v0/onboarding/oauth-url", a.oauthURL)
	mux.Post("/api/v0/billing/portal", a.billingPortal)
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "onboarding.API.status")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	status, err := a.service.Status(ctx, identityID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (a *API) wait(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "onboarding.API.wait")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	timeout := defaultWaitTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid timeout")
			return
		}
		if parsed > maxWaitTimeout {
			parsed = maxWaitTimeout
		}
		timeout = parsed
	}

	verified, err := a.service.WaitVerified(ctx, identityID, timeout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing to write.
			return
		}
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (a *API) resend(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "onboarding.API.resend")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if err := a.service.ResendVerification(ctx, identityID); err != nil {
		a.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "onboarding.API.createTenant")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	creation, err := a.service.CreateTenantForOwner(ctx, identityID, &req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, creation)
}

func (a *API) oauthURL(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "onboarding.API.oauthURL")
	defer span.End()

	state := r.URL.Query().Get("state")
	if state == "" {
		writeError(w, http.StatusBadRequest, "state is required")
		return
	}

	url := a.service.OAuthRedirectURL(state, r.URL.Query().Get("return_to"))
	if url == "" {
		writeError(w, http.StatusNotImplemented, "oauth signup is not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (a *API) billingPortal(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "onboarding.API.billingPortal")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	url, err := a.service.PortalURL(ctx, identityID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrIdentityNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, validation.ErrInvalidTaxID), errors.Is(err, ErrPlanNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateTaxID), errors.Is(err, ErrAlreadyInTenant):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrResendCooldown):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrNoBillingAccount):
		writeError(w, http.StatusConflict, err.Error())
	default:
		a.logger.Errorf("onboarding operation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": status, "message": message})
}
