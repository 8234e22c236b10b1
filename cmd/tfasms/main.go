package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-tfa/pkg/phonedir"
	"github.com/tendant/simple-tfa/pkg/sms"
	"github.com/tendant/simple-tfa/pkg/tfasms"
	tfasmsapi "github.com/tendant/simple-tfa/pkg/tfasms/api"
)

type TfaDbConfig struct {
	Host     string `env:"TFA_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"TFA_PG_PORT" env-default:"5432"`
	Database string `env:"TFA_PG_DATABASE" env-default:"tfa_db"`
	User     string `env:"TFA_PG_USER" env-default:"tfa"`
	Password string `env:"TFA_PG_PASSWORD" env-default:"pwd"`
}

func (d TfaDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type JwtConfig struct {
	JwtSecret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

type TfaSmsConfig struct {
	// PersistenceType selects session storage: postgres, file or memory
	PersistenceType string `env:"TFA_SMS_PERSISTENCE_TYPE" env-default:"postgres"`
	DataDir         string `env:"TFA_SMS_DATA_DIR" env-default:"./data"`
	// Debug logs codes instead of sending SMS. Never enable in production.
	Debug                 bool   `env:"TFA_SMS_DEBUG" env-default:"false"`
	MaxAttempts           int    `env:"TFA_SMS_MAX_ATTEMPTS" env-default:"3"`
	ResendCooldownSeconds int    `env:"TFA_SMS_RESEND_COOLDOWN_SECONDS" env-default:"30"`
	CodeExpirySeconds     int    `env:"TFA_SMS_CODE_EXPIRY_SECONDS" env-default:"300"`
	MessagePrefix         string `env:"TFA_SMS_MESSAGE_PREFIX" env-default:"Your verification code is:"`
	ResendLimitPerMinute  int    `env:"TFA_SMS_RESEND_LIMIT_PER_MINUTE" env-default:"5"`
}

type Config struct {
	TfaDbConfig  TfaDbConfig
	AppConfig    app.AppConfig
	JwtConfig    JwtConfig
	TfaSmsConfig TfaSmsConfig
	TwilioConfig sms.TwilioConfig
}

func main() {

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	var repo tfasms.SessionRepository
	var phones phonedir.PhoneDirectory

	switch config.TfaSmsConfig.PersistenceType {
	case "postgres", "postgresql":
		dbConfig := config.TfaDbConfig.toDbConfig()
		pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			os.Exit(-1)
		}
		repo = tfasms.NewPostgresSessionRepository(pool)
		phones = phonedir.NewPostgresPhoneDirectory(pool)
	default:
		var err error
		repo, err = tfasms.NewSessionRepository(config.TfaSmsConfig.PersistenceType, tfasms.RepositoryConfig{
			DataDir: config.TfaSmsConfig.DataDir,
		})
		if err != nil {
			slog.Error("Failed creating session repository", "persistenceType", config.TfaSmsConfig.PersistenceType, "err", err)
			os.Exit(-1)
		}
		slog.Warn("No database configured, phone numbers must be registered at runtime", "persistenceType", config.TfaSmsConfig.PersistenceType)
		phones = phonedir.NewInMemoryPhoneDirectory()
	}

	var sender sms.Sender
	if config.TfaSmsConfig.Debug {
		slog.Warn("Debug mode enabled, verification codes will be logged instead of sent")
		sender = &sms.DebugSender{}
	} else {
		twilioSender, err := sms.NewTwilioSender(config.TwilioConfig)
		if err != nil {
			slog.Error("Failed creating twilio sender", "err", err)
			os.Exit(-1)
		}
		sender = twilioSender
	}

	verificationService := tfasms.NewVerificationService(
		repo,
		phones,
		sender,
		tfasms.WithMaxAttempts(config.TfaSmsConfig.MaxAttempts),
		tfasms.WithResendCooldown(time.Duration(config.TfaSmsConfig.ResendCooldownSeconds)*time.Second),
		tfasms.WithCodeExpiry(time.Duration(config.TfaSmsConfig.CodeExpirySeconds)*time.Second),
		tfasms.WithMessagePrefix(config.TfaSmsConfig.MessagePrefix),
	)

	handler := tfasmsapi.NewHandler(
		verificationService,
		tfasmsapi.WithResendRateLimit(config.TfaSmsConfig.ResendLimitPerMinute, time.Minute),
	)

	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Route("/tfa/sms", func(r chi.Router) {
			handler.RegisterRoutes(r)
		})
	})

	server.Run()
}
