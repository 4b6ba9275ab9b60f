package account

import (
	"context"
	"strings"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultTradingMode preselected when nothing is configured
const DefaultTradingMode = "mock"

// SettingsBackend is the part of the resource client the settings form uses
type SettingsBackend interface {
	KISCredentials(ctx context.Context) (*domain.KISCredentials, error)
	UpdateKISCredentials(ctx context.Context, update domain.KISCredentialsUpdate) error
}

// SettingsForm is the prefilled settings form. Keys are never echoed back.
type SettingsForm struct {
	HasCredentials bool   `json:"has_credentials"`
	AccountNumber  string `json:"account_number"`
	TradingMode    string `json:"trading_mode"`
}

// Settings loads and saves the KIS credentials
type Settings struct {
	backend SettingsBackend
	log     zerolog.Logger
}

// NewSettings creates the settings form service
func NewSettings(b SettingsBackend, log zerolog.Logger) *Settings {
	return &Settings{
		backend: b,
		log:     log.With().Str("component", "kis_settings").Logger(),
	}
}

// Load returns the form prefilled from the backend
func (s *Settings) Load(ctx context.Context) (*SettingsForm, error) {
	creds, err := s.backend.KISCredentials(ctx)
	if err != nil {
		return nil, err
	}

	form := &SettingsForm{
		HasCredentials: creds.HasCredentials,
		TradingMode:    creds.KISTradingMode,
	}
	if form.TradingMode == "" {
		form.TradingMode = DefaultTradingMode
	}
	// Only a well formed NNNNNNNN-NN number is shown back
	if _, _, ok := SplitAccountNumber(creds.KISAccountNumber); ok {
		form.AccountNumber = creds.KISAccountNumber
	}
	return form, nil
}

// Save validates the form and stores it
func (s *Settings) Save(ctx context.Context, form domain.KISCredentialsForm) error {
	form.AccountNumber = strings.TrimSpace(form.AccountNumber)
	if err := domain.Validate(form); err != nil {
		return err
	}
	number, code, _ := SplitAccountNumber(form.AccountNumber)

	if err := s.backend.UpdateKISCredentials(ctx, domain.KISCredentialsUpdate{
		KISAppKey:        strings.TrimSpace(form.AppKey),
		KISAppSecret:     strings.TrimSpace(form.AppSecret),
		KISAccountNumber: number,
		KISAccountCode:   code,
		KISTradingMode:   form.TradingMode,
	}); err != nil {
		return err
	}

	s.log.Info().Str("trading_mode", form.TradingMode).Msg("KIS credentials saved")
	return nil
}

// SplitAccountNumber splits "12345678-01" into its number and product code
func SplitAccountNumber(s string) (number, code string, ok bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
