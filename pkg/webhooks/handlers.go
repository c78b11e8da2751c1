// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
)

// maxPayloadBytes caps webhook bodies; provider events are small.
const maxPayloadBytes = 1 << 20

type API struct {
	service       ServiceInterface
	webhookSecret string
	tracer        tracing.TracingInterface
	logger        logging.LoggerInterface
}

func NewAPI(service ServiceInterface, webhookSecret string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:       service,
		webhookSecret: webhookSecret,
		tracer:        tracer,
		logger:        logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/webhooks/billing", a.billing)
	mux.Post("/webhooks/identity", a.identity)
}

// billing verifies the provider signature before touching any payload
// content. Invalid signatures are rejected without logging the body.
func (a *API) billing(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "webhooks.API.billing")
	defer span.End()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	header := r.Header.Get(billing.SignatureHeader)
	if err := billing.VerifySignature(payload, header, a.webhookSecret, time.Now()); err != nil {
		a.logger.Security().WebhookSignatureFailure("billing")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event billing.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	if err := a.service.HandleBillingEvent(ctx, &event); err != nil {
		a.logger.Errorf("failed to handle billing event %s: %v", event.ID, err)
		http.Error(w, "event handling failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *API) identity(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "webhooks.API.identity")
	defer span.End()

	var identity KratosIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.service.HandleIdentityVerified(ctx, identity.ID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}
