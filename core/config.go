package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Environment string

const (
	EnvironmentDev  Environment = "dev"
	EnvironmentProd Environment = "prod"
)

type TokenMode string

const (
	// TokenModeAuto runs the token exchange only when an identity-provider token is present.
	TokenModeAuto TokenMode = "auto"
	// TokenModeAlways runs the token exchange for every payment.
	TokenModeAlways TokenMode = "always"
)

type AbandonPolicy string

const (
	// AbandonPolicyDrop discards a superseded or reset session without notifying its caller.
	AbandonPolicyDrop AbandonPolicy = "drop"
	// AbandonPolicyCancel delivers Cancelled to a superseded or reset session.
	AbandonPolicyCancel AbandonPolicy = "cancel"
)

type Config struct {
	Environment    Environment   `koanf:"environment" mapstructure:"environment" validate:"required,oneof=dev prod"`
	IdpToken       string        `koanf:"idp_token" mapstructure:"idp_token"`
	Debug          bool          `koanf:"debug" mapstructure:"debug"`
	MerchantID     string        `koanf:"merchant_id" mapstructure:"merchant_id"`
	TokenMode      TokenMode     `koanf:"token_mode" mapstructure:"token_mode" validate:"omitempty,oneof=auto always"`
	CallbackScheme string        `koanf:"callback_scheme" mapstructure:"callback_scheme"`
	AbandonPolicy  AbandonPolicy `koanf:"abandon_policy" mapstructure:"abandon_policy" validate:"omitempty,oneof=drop cancel"`
}

func DefaultConfig() Config {
	return Config{
		Environment:   EnvironmentDev,
		TokenMode:     TokenModeAuto,
		AbandonPolicy: AbandonPolicyDrop,
	}
}

func (c Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("core: invalid config %s %q", first.Field(), fmt.Sprint(first.Value()))
		}
		return fmt.Errorf("core: invalid config: %w", err)
	}
	if scheme := strings.TrimSpace(c.CallbackScheme); scheme != "" && strings.Contains(scheme, "://") {
		return fmt.Errorf("core: callback_scheme must not include ://")
	}
	return nil
}

// Endpoints returns the web app and API base URLs for the configured environment.
func (c Config) Endpoints() Endpoints {
	endpoints, _ := ResolveEndpoints(c.Environment)
	return endpoints
}

func (c Config) tokenMode() TokenMode {
	if c.TokenMode == "" {
		return TokenModeAuto
	}
	return c.TokenMode
}

func (c Config) abandonPolicy() AbandonPolicy {
	if c.AbandonPolicy == "" {
		return AbandonPolicyDrop
	}
	return c.AbandonPolicy
}
