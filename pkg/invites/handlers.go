// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Pmelo22/ClinicOps-sub000/internal/identity"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
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
	mux.Post("/api/v0/tenants/{id}/invites", a.issue)
	mux.Get("/api/v0/tenants/{id}/invites", a.list)
	mux.Delete("/api/v0/tenants/{id}/invites/{inviteID}", a.revoke)
	mux.Get("/api/v0/invites/{code}", a.validateCode)
	mux.Post("/api/v0/invites/{code}/redeem", a.redeem)
}

type issueRequest struct {
	InvitedEmail string `json:"invited_email" validate:"omitempty,email"`
	Role         string `json:"role" validate:"omitempty,oneof=operational tenant_admin"`
	ValidityDays int    `json:"validity_days" validate:"omitempty,min=1,max=30"`
}

func (a *API) issue(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invites.API.issue")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	invite, err := a.service.IssueInvite(ctx, chi.URLParam(r, "id"), identityID, IssueOptions{
		InvitedEmail: req.InvitedEmail,
		Role:         req.Role,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, invite)
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invites.API.list")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	invites, err := a.service.ListInvites(ctx, chi.URLParam(r, "id"), identityID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invites)
}

func (a *API) revoke(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invites.API.revoke")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	err := a.service.RevokeInvite(ctx, chi.URLParam(r, "id"), identityID, chi.URLParam(r, "inviteID"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validateCode is the live-validation endpoint backing the signup form. It is
// unauthenticated and never consumes the code.
func (a *API) validateCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invites.API.validateCode")
	defer span.End()

	validation, err := a.service.ValidateInvite(ctx, chi.URLParam(r, "code"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	// The public endpoint does not leak invite details, only the verdict.
	writeJSON(w, http.StatusOK, &Validation{Valid: validation.Valid, Reason: validation.Reason})
}

func (a *API) redeem(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invites.API.redeem")
	defer span.End()

	identityID := identity.IdentityID(ctx)
	if identityID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	redemption, err := a.service.RedeemInvite(ctx, chi.URLParam(r, "code"), identityID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, redemption)
}

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyUsed), errors.Is(err, ErrExpired), errors.Is(err, ErrAlreadyInTenant), errors.Is(err, ErrEmailMismatch):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Errorf("invite operation failed: %v", err)
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
