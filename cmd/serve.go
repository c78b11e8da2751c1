// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/Pmelo22/ClinicOps-sub000/internal/billing"
	"github.com/Pmelo22/ClinicOps-sub000/internal/config"
	"github.com/Pmelo22/ClinicOps-sub000/internal/db"
	"github.com/Pmelo22/ClinicOps-sub000/internal/kratos"
	"github.com/Pmelo22/ClinicOps-sub000/internal/logging"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring"
	"github.com/Pmelo22/ClinicOps-sub000/internal/monitoring/prometheus"
	"github.com/Pmelo22/ClinicOps-sub000/internal/storage"
	"github.com/Pmelo22/ClinicOps-sub000/internal/tracing"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/authentication"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/invites"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/onboarding"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/tenant"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/web"
	"github.com/Pmelo22/ClinicOps-sub000/pkg/webhooks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("clinicops-sub", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	kratosClient := kratos.NewClient(specs.KratosAdminURL, tracer, monitor, logger)
	billingClient := billing.NewClient(specs.BillingAPIURL, specs.BillingAPIKey, tracer, monitor, logger)

	var oauthConfig *oauth2.Config
	if specs.OAuthClientID != "" {
		oauthConfig = &oauth2.Config{
			ClientID:    specs.OAuthClientID,
			Endpoint:    oauth2.Endpoint{AuthURL: specs.OAuthAuthURL},
			RedirectURL: specs.OAuthRedirectURL,
		}
	}

	onboardingService := onboarding.NewService(
		s,
		kratosClient,
		billingClient,
		&onboarding.Config{
			ResendCooldown:    specs.ResendCooldown,
			TrialDays:         specs.TrialDays,
			CheckoutReturnURL: specs.CheckoutReturnURL,
			OAuth:             oauthConfig,
		},
		tracer,
		monitor,
		logger,
	)
	invitesService := invites.NewService(s, kratosClient, specs.InviteValidityDays, tracer, monitor, logger)
	webhooksService := webhooks.NewService(s, onboardingService, tracer, monitor, logger)
	tenantService := tenant.NewService(s, kratosClient, tracer, monitor, logger)

	adminVerifier, err := adminTokenVerifier(specs, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to set up admin token verification: %v", err)
	}

	router := web.NewRouter(
		onboardingService,
		invitesService,
		webhooksService,
		tenantService,
		adminVerifier,
		specs.BillingWebhookSecret,
		dbClient,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

// adminTokenVerifier builds the bearer-token verifier for the admin surface.
// With admin auth disabled every token passes; that mode is for local
// development only.
func adminTokenVerifier(
	specs *config.EnvSpec,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (authentication.TokenVerifierInterface, error) {
	if !specs.AdminAuthEnabled {
		logger.Warnf("admin authentication is disabled, all admin tokens will be accepted")
		return authentication.NewNoopVerifier(), nil
	}

	return authentication.NewJWTAuthenticator(
		context.Background(),
		specs.AdminOIDCIssuer,
		specs.AdminJWKSURL,
		specs.AdminAllowedSubjects,
		specs.AdminRequiredScope,
		tracer,
		monitor,
		logger,
	)
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
