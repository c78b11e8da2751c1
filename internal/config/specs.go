// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	KratosAdminURL string `envconfig:"kratos_admin_url" required:"true"`

	BillingAPIURL        string `envconfig:"billing_api_url" required:"true"`
	BillingAPIKey        string `envconfig:"billing_api_key" required:"true"`
	BillingWebhookSecret string `envconfig:"billing_webhook_secret" required:"true"`
	CheckoutReturnURL    string `envconfig:"checkout_return_url" default:"https://app.clinicops.dev/onboarding/done"`

	OAuthClientID    string `envconfig:"oauth_client_id"`
	OAuthAuthURL     string `envconfig:"oauth_auth_url"`
	OAuthRedirectURL string `envconfig:"oauth_redirect_url"`

	AdminAuthEnabled     bool     `envconfig:"admin_auth_enabled" default:"true"`
	AdminOIDCIssuer      string   `envconfig:"admin_oidc_issuer"`
	AdminJWKSURL         string   `envconfig:"admin_jwks_url"`
	AdminAllowedSubjects []string `envconfig:"admin_allowed_subjects"`
	AdminRequiredScope   string   `envconfig:"admin_required_scope" default:"clinicops:admin"`

	InviteValidityDays int           `envconfig:"invite_validity_days" default:"7"`
	ResendCooldown     time.Duration `envconfig:"resend_cooldown" default:"60s"`
	TrialDays          int           `envconfig:"trial_days" default:"14"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
}
