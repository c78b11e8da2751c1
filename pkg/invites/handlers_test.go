// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/Pmelo22/ClinicOps-sub000/internal/identity"
	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
)

func newTestAPI(t *testing.T) (*API, *MockServiceInterface, *chi.Mux) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockService := NewMockServiceInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	api := NewAPI(mockService, mockTracer, mockLogger)
	mux := chi.NewMux()
	api.RegisterEndpoints(mux)

	return api, mockService, mux
}

func authenticated(r *http.Request, identityID string) *http.Request {
	return r.WithContext(identity.WithIdentityID(r.Context(), identityID))
}

func TestAPI_Issue(t *testing.T) {
	_, mockService, mux := newTestAPI(t)

	mockService.EXPECT().
		IssueInvite(gomock.Any(), "tenant-1", "admin-1", IssueOptions{InvitedEmail: "alice@example.com", Role: "operational", ValidityDays: 14}).
		Return(&types.Invite{ID: "invite-1", TenantID: "tenant-1", Code: "ABCD2345"}, nil)

	body := `{"invited_email":"alice@example.com","role":"operational","validity_days":14}`
	req := httptest.NewRequest(http.MethodPost, "/api/v0/tenants/tenant-1/invites", strings.NewReader(body))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, authenticated(req, "admin-1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var invite types.Invite
	if err := json.NewDecoder(rec.Body).Decode(&invite); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if invite.Code != "ABCD2345" {
		t.Errorf("expected code ABCD2345, got %q", invite.Code)
	}
}

func TestAPI_Issue_Unauthenticated(t *testing.T) {
	_, _, mux := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v0/tenants/tenant-1/invites", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAPI_Issue_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"bad email", `{"invited_email":"not-an-email"}`},
		{"bad role", `{"role":"platform_master"}`},
		{"validity above range", `{"validity_days":31}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, mux := newTestAPI(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/tenants/tenant-1/invites", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, authenticated(req, "admin-1"))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestAPI_Issue_PermissionDenied(t *testing.T) {
	_, mockService, mux := newTestAPI(t)

	mockService.EXPECT().
		IssueInvite(gomock.Any(), "tenant-1", "user-1", gomock.Any()).
		Return(nil, ErrPermissionDenied)

	req := httptest.NewRequest(http.MethodPost, "/api/v0/tenants/tenant-1/invites", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, authenticated(req, "user-1"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestAPI_ValidateCode(t *testing.T) {
	testCases := []struct {
		name       string
		validation *Validation
	}{
		{"valid code", &Validation{Valid: true}},
		{"used code", &Validation{Valid: false, Reason: ReasonAlreadyUsed}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, mockService, mux := newTestAPI(t)

			withInvite := *tc.validation
			withInvite.Invite = &types.Invite{ID: "invite-1", TenantID: "tenant-1"}
			mockService.EXPECT().ValidateInvite(gomock.Any(), "ABCD2345").Return(&withInvite, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/invites/ABCD2345", nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}

			var got Validation
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if got.Valid != tc.validation.Valid || got.Reason != tc.validation.Reason {
				t.Errorf("unexpected verdict: %+v", got)
			}
			if got.Invite != nil {
				t.Error("public validation must not expose invite details")
			}
		})
	}
}

func TestAPI_Redeem(t *testing.T) {
	testCases := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{"success", nil, http.StatusOK},
		{"already used", ErrAlreadyUsed, http.StatusConflict},
		{"expired", ErrExpired, http.StatusConflict},
		{"email mismatch", ErrEmailMismatch, http.StatusConflict},
		{"already in tenant", ErrAlreadyInTenant, http.StatusConflict},
		{"unknown code", ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, mockService, mux := newTestAPI(t)

			var redemption *Redemption
			if tc.serviceErr == nil {
				redemption = &Redemption{TenantID: "tenant-1", Role: types.RoleOperational}
			}
			mockService.EXPECT().RedeemInvite(gomock.Any(), "ABCD2345", "user-1").Return(redemption, tc.serviceErr)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/invites/ABCD2345/redeem", nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, authenticated(req, "user-1"))

			if rec.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAPI_Revoke(t *testing.T) {
	_, mockService, mux := newTestAPI(t)

	mockService.EXPECT().RevokeInvite(gomock.Any(), "tenant-1", "admin-1", "invite-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v0/tenants/tenant-1/invites/invite-1", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, authenticated(req, "admin-1"))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestAPI_List(t *testing.T) {
	_, mockService, mux := newTestAPI(t)

	mockService.EXPECT().ListInvites(gomock.Any(), "tenant-1", "admin-1").
		Return([]*types.Invite{{ID: "invite-1"}, {ID: "invite-2"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/tenants/tenant-1/invites", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, authenticated(req, "admin-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var invites []*types.Invite
	if err := json.NewDecoder(rec.Body).Decode(&invites); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(invites) != 2 {
		t.Errorf("expected 2 invites, got %d", len(invites))
	}
}
