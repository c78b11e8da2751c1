// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
)

const testWebhookSecret = "whsec_test"

func newTestAPI(t *testing.T) (*MockServiceInterface, *chi.Mux) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockService := NewMockServiceInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
	mockSecurity.EXPECT().WebhookSignatureFailure(gomock.Any()).AnyTimes()

	api := NewAPI(mockService, testWebhookSecret, mockTracer, mockLogger)
	mux := chi.NewMux()
	api.RegisterEndpoints(mux)

	return mockService, mux
}

func signedBillingRequest(payload []byte, timestamp int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(payload))
	req.Header.Set(billing.SignatureHeader, billing.SignatureHeaderValue(payload, testWebhookSecret, timestamp))
	return req
}

func TestAPI_Billing(t *testing.T) {
	mockService, mux := newTestAPI(t)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	mockService.EXPECT().HandleBillingEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *billing.Event) error {
			if event.ID != "evt_1" || event.Type != billing.EventCheckoutCompleted {
				t.Errorf("unexpected event: %+v", event)
			}
			return nil
		})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedBillingRequest(payload, time.Now().Unix()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestAPI_Billing_RejectedSignatures(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	testCases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "not-a-signature"},
		{
			"wrong secret",
			billing.SignatureHeaderValue(payload, "whsec_other", time.Now().Unix()),
		},
		{
			"stale timestamp",
			billing.SignatureHeaderValue(payload, testWebhookSecret, time.Now().Add(-10*time.Minute).Unix()),
		},
		{
			"signature of a different payload",
			billing.SignatureHeaderValue([]byte(`{"id":"evt_2"}`), testWebhookSecret, time.Now().Unix()),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// No service expectations: a bad signature must never reach it.
			_, mux := newTestAPI(t)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(payload))
			if tc.header != "" {
				req.Header.Set(billing.SignatureHeader, tc.header)
			}
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestAPI_Billing_MalformedPayload(t *testing.T) {
	_, mux := newTestAPI(t)

	payload := []byte(`{"id":`)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedBillingRequest(payload, time.Now().Unix()))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAPI_Billing_ServiceError(t *testing.T) {
	mockService, mux := newTestAPI(t)

	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)

	mockService.EXPECT().HandleBillingEvent(gomock.Any(), gomock.Any()).
		Return(errors.New("storage unavailable"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedBillingRequest(payload, time.Now().Unix()))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestAPI_Identity(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().HandleIdentityVerified(gomock.Any(), "user-1").Return(nil)

	body := `{"id":"user-1","traits":{"email":"alice@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestAPI_Identity_InvalidBody(t *testing.T) {
	_, mux := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(`{"id":`))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
