// Package main runs the SMS verification service without a database or SMS
// gateway. This is useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the API without Twilio credentials
//
// Note: All data is lost when the server stops. Verification codes are logged
// instead of sent. For production, use cmd/tfasms with PostgreSQL and Twilio.
package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-tfa/pkg/phonedir"
	"github.com/tendant/simple-tfa/pkg/sms"
	"github.com/tendant/simple-tfa/pkg/tfasms"
	tfasmsapi "github.com/tendant/simple-tfa/pkg/tfasms/api"
)

const (
	jwtSecret = "inmem-dev-secret-change-in-production"
	demoUser  = "0b2acc5e-aa24-4a88-8d1d-83f0d77dbc35"
	demoPhone = "+15005550006"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting In-Memory SMS Verification Service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	repo := tfasms.NewInMemorySessionRepository()
	phones := phonedir.NewInMemoryPhoneDirectory()

	// Seed a demo user so the flow can be exercised immediately
	userID := uuid.MustParse(demoUser)
	phones.SetPhone(userID, demoPhone)

	verificationService := tfasms.NewVerificationService(
		repo,
		phones,
		&sms.DebugSender{},
	)

	handler := tfasmsapi.NewHandler(
		verificationService,
		tfasmsapi.WithResendRateLimit(5, time.Minute),
	)

	appConfig := app.DefaultAppConfig()
	appConfig.Port = 4000
	server := app.NewApp(app.WithAppConfig(appConfig))

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	tokenAuth := jwtauth.New("HS256", []byte(jwtSecret), nil)

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Route("/tfa/sms", func(r chi.Router) {
			handler.RegisterRoutes(r)
		})
	})

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-Memory SMS Verification Service Ready")
	slog.Info("")
	slog.Info("Demo user:")
	slog.Info("  User ID: " + demoUser)
	slog.Info("  Phone:   " + demoPhone)
	slog.Info("")
	slog.Info("Mint a token with: go run ./cmd/tokengen " + demoUser)
	slog.Info("")
	slog.Info("API Endpoints (auth required):")
	slog.Info("  POST /tfa/sms/begin         - Start a verification round")
	slog.Info("  GET  /tfa/sms/status        - Round status")
	slog.Info("  POST /tfa/sms/validate      - Validate a code")
	slog.Info("  POST /tfa/sms/resend/{uid}  - Resend a code")
	slog.Info("  POST /tfa/sms/clear         - Clear verification state")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}
