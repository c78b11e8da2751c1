// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tenant is the platform operator's admin surface. Unlike the
// header-authenticated clinic endpoints, it sits behind OIDC bearer-token
// authentication and is not reachable by tenant users.
package tenant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/authentication"
)

type API struct {
	service ServiceInterface
	tracer  tracing.TracingInterface
	logger  logging.LoggerInterface
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux, authenticate func(http.Handler) http.Handler) {
	admin := mux.With(authenticate)
	admin.Get("/api/v0/admin/tenants", a.list)
	admin.Get("/api/v0/admin/tenants/{id}", a.get)
	admin.Get("/api/v0/admin/tenants/{id}/members", a.members)
	admin.Post("/api/v0/admin/tenants/{id}/suspend", a.suspend)
	admin.Post("/api/v0/admin/tenants/{id}/reactivate", a.reactivate)
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.list")
	defer span.End()

	tenants, err := a.service.ListTenants(ctx)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tenants)
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.get")
	defer span.End()

	t, err := a.service.GetTenant(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (a *API) members(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.members")
	defer span.End()

	members, err := a.service.ListMembers(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (a *API) suspend(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.suspend")
	defer span.End()

	actor, _ := authentication.GetUserID(ctx)

	var req suspendRequest
	if r.Body != nil {
		// The reason is optional; an empty or absent body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := a.service.SuspendTenant(ctx, chi.URLParam(r, "id"), actor, req.Reason); err != nil {
		a.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) reactivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.reactivate")
	defer span.End()

	actor, _ := authentication.GetUserID(ctx)

	if err := a.service.ReactivateTenant(ctx, chi.URLParam(r, "id"), actor); err != nil {
		a.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		a.logger.Errorf("admin tenant operation failed: %v", err)
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
