// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"net/http"

	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
)

// HeaderName is the header the identity-aware proxy uses to pass the
// authenticated identity ID.
const HeaderName = "X-Kratos-Authenticated-Identity-Id"

type contextKey struct{}

var identityContextKey = contextKey{}

type Middleware struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.HTTPMiddleware")
		defer span.End()

		ctx = WithIdentityID(ctx, r.Header.Get(HeaderName))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithIdentityID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityID returns the authenticated identity id, empty for anonymous calls.
func IdentityID(ctx context.Context) string {
	if id, ok := ctx.Value(identityContextKey).(string); ok {
		return id
	}
	return ""
}
