package sms

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// e164Pattern matches phone numbers in E.164 format, e.g. +1234567890
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// TwilioConfig holds the Twilio gateway credentials
type TwilioConfig struct {
	AccountSid string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	From       string `env:"TWILIO_FROM" env-default:"+15005550006"`
}

// Validate checks that the configuration is complete and the from number is
// in E.164 format
func (c TwilioConfig) Validate() error {
	if c.AccountSid == "" {
		return fmt.Errorf("twilio account SID is required")
	}
	if c.AuthToken == "" {
		return fmt.Errorf("twilio auth token is required")
	}
	if c.From == "" {
		return fmt.Errorf("twilio from number is required")
	}
	if !ValidE164(c.From) {
		return fmt.Errorf("twilio from number must be in E.164 format (e.g. +1234567890): %s", c.From)
	}
	return nil
}

// ValidE164 reports whether phone is a valid E.164 phone number
func ValidE164(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// TwilioSender implements Sender using the Twilio REST API
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a new Twilio-backed sender
func NewTwilioSender(config TwilioConfig) (*TwilioSender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid twilio config: %w", err)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &TwilioSender{
		client: client,
		from:   config.From,
	}, nil
}

// Send dispatches an SMS message via Twilio
func (s *TwilioSender) Send(ctx context.Context, phone, body string) error {
	if phone == "" || body == "" {
		return fmt.Errorf("sms requires a recipient and a body")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Failed to send sms", "to", phone, "error", err)
		return fmt.Errorf("failed to send sms: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.Info("Sms accepted for delivery", "to", phone, "sid", sid)
	return nil
}
