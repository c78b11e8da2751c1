// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/Pmelo22/ClinicOps-sub000/internal/types"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/authentication"
)

const testAdminSubject = "svc-platform-ops"

// stubAuthenticate stands in for the OIDC middleware and injects a fixed
// service subject.
func stubAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := authentication.WithUserID(r.Context(), testAdminSubject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newTestAPI(t *testing.T) (*MockServiceInterface, *chi.Mux) {
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
	api.RegisterEndpoints(mux, stubAuthenticate)

	return mockService, mux
}

func TestAPI_List(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().ListTenants(gomock.Any()).
		Return([]*types.Tenant{{ID: "tenant-1", Name: "North Clinic"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/admin/tenants", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var tenants []*types.Tenant
	if err := json.NewDecoder(rec.Body).Decode(&tenants); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(tenants) != 1 || tenants[0].ID != "tenant-1" {
		t.Errorf("unexpected tenants: %+v", tenants)
	}
}

func TestAPI_Get_NotFound(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().GetTenant(gomock.Any(), "tenant-x").Return(nil, ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/admin/tenants/tenant-x", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAPI_Members(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().ListMembers(gomock.Any(), "tenant-1").
		Return([]*Member{{ID: "user-1", Email: "alice@example.com", Role: types.RoleTenantAdmin}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/admin/tenants/tenant-1/members", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var members []*Member
	if err := json.NewDecoder(rec.Body).Decode(&members); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(members) != 1 || members[0].Email != "alice@example.com" {
		t.Errorf("unexpected members: %+v", members)
	}
}

func TestAPI_Suspend(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().
		SuspendTenant(gomock.Any(), "tenant-1", testAdminSubject, "nonpayment").
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v0/admin/tenants/tenant-1/suspend",
		strings.NewReader(`{"reason":"nonpayment"}`))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d: %s", http.StatusNoContent, rec.Code, rec.Body.String())
	}
}

func TestAPI_Suspend_EmptyBody(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().
		SuspendTenant(gomock.Any(), "tenant-1", testAdminSubject, "").
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v0/admin/tenants/tenant-1/suspend", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestAPI_Reactivate(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().
		ReactivateTenant(gomock.Any(), "tenant-1", testAdminSubject).
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v0/admin/tenants/tenant-1/reactivate", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestAPI_Reactivate_StorageError(t *testing.T) {
	mockService, mux := newTestAPI(t)

	mockService.EXPECT().
		ReactivateTenant(gomock.Any(), "tenant-1", testAdminSubject).
		Return(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodPost, "/api/v0/admin/tenants/tenant-1/reactivate", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}
