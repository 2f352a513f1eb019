package core

import (
	"fmt"
	"strings"
	"time"
)

type OAuthConfig struct {
	StateTTL time.Duration `koanf:"state_ttl" mapstructure:"state_ttl"`
}

type InstallConfig struct {
	CodeMaxAttempts int           `koanf:"code_max_attempts" mapstructure:"code_max_attempts"`
	PendingTTL      time.Duration `koanf:"pending_ttl" mapstructure:"pending_ttl"`
}

type Config struct {
	ServiceName     string        `koanf:"service_name" mapstructure:"service_name"`
	CallbackBaseURL string        `koanf:"callback_base_url" mapstructure:"callback_base_url"`
	OAuth           OAuthConfig   `koanf:"oauth" mapstructure:"oauth"`
	Install         InstallConfig `koanf:"install" mapstructure:"install"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "extensions",
		OAuth: OAuthConfig{
			StateTTL: defaultOAuthStateTTL,
		},
		Install: InstallConfig{
			CodeMaxAttempts: defaultCodeMaxAttempts,
			PendingTTL:      defaultInstallPendingTTL,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Install.CodeMaxAttempts < 0 {
		return fmt.Errorf("core: install.code_max_attempts cannot be negative")
	}
	return nil
}
