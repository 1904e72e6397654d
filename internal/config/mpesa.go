package config

import (
	"fmt"
	"net/url"
	"time"
)

// Gateway environments and their Daraja base URLs.
const (
	MpesaSandbox    = "sandbox"
	MpesaProduction = "production"
)

var mpesaBaseURLs = map[string]string{
	MpesaSandbox:    "https://sandbox.safaricom.co.ke",
	MpesaProduction: "https://api.safaricom.co.ke",
}

// Mpesa holds the payment gateway settings handed to the gateway client.
type Mpesa struct {
	Environment    string        `yaml:"environment" env:"MPESA_ENV" env-default:"sandbox"`
	BaseURL        string        `yaml:"base_url" env:"MPESA_BASE_URL"`
	ConsumerKey    string        `yaml:"-" env:"MPESA_CONSUMER_KEY"`
	ConsumerSecret string        `yaml:"-" env:"MPESA_CONSUMER_SECRET"`
	Shortcode      string        `yaml:"shortcode" env:"MPESA_SHORTCODE"`
	Passkey        string        `yaml:"-" env:"MPESA_PASSKEY"`
	CallbackURL    string        `yaml:"callback_url" env:"MPESA_CALLBACK_URL"`
	Description    string        `yaml:"description" env:"MPESA_TRANSACTION_DESC" env-default:"Cake Purchase"`
	Timeout        time.Duration `yaml:"timeout" env:"MPESA_TIMEOUT" env-default:"30s"`
	RateLimit      float64       `yaml:"rate_limit" env:"MPESA_RATE_LIMIT" env-default:"0"`
}

// ResolveBaseURL returns the explicit base URL or the one implied by the environment.
func (m Mpesa) ResolveBaseURL() (string, error) {
	if m.BaseURL != "" {
		return m.BaseURL, nil
	}
	base, ok := mpesaBaseURLs[m.Environment]
	if !ok {
		return "", fmt.Errorf("unknown mpesa environment %q", m.Environment)
	}
	return base, nil
}

// Validate reports missing or inconsistent gateway settings.
func (m Mpesa) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"MPESA_CONSUMER_KEY", m.ConsumerKey},
		{"MPESA_CONSUMER_SECRET", m.ConsumerSecret},
		{"MPESA_SHORTCODE", m.Shortcode},
		{"MPESA_PASSKEY", m.Passkey},
		{"MPESA_CALLBACK_URL", m.CallbackURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must be provided", r.name)
		}
	}

	callback, err := url.Parse(m.CallbackURL)
	if err != nil || !callback.IsAbs() {
		return fmt.Errorf("mpesa callback url must be absolute")
	}

	if _, err := m.ResolveBaseURL(); err != nil {
		return err
	}
	return nil
}
