// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Pmelo22/ClinicOps-sub000/internal/db"
	"github.com/Pmelo22/ClinicOps-sub000/internal/identity"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/authentication"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/invites"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/metrics"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/onboarding"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/status"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/tenant"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/webhooks"
)

func NewRouter(
	onboardingService onboarding.ServiceInterface,
	invitesService invites.ServiceInterface,
	webhooksService webhooks.ServiceInterface,
	tenantService tenant.ServiceInterface,
	adminVerifier authentication.TokenVerifierInterface,
	billingWebhookSecret string,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
		identity.NewMiddleware(tracer, monitor, logger).HTTPMiddleware,
		// Mutating requests run inside one transaction; a handler error
		// rolls every write of the request back.
		db.TransactionMiddleware(dbClient, logger),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)

	onboarding.NewAPI(onboardingService, tracer, logger).RegisterEndpoints(router)
	invites.NewAPI(invitesService, tracer, logger).RegisterEndpoints(router)
	webhooks.NewAPI(webhooksService, billingWebhookSecret, tracer, logger).RegisterEndpoints(router)

	adminAuth := authentication.NewMiddleware(adminVerifier, tracer, monitor, logger)
	tenant.NewAPI(tenantService, tracer, logger).RegisterEndpoints(router, adminAuth.Authenticate())

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
