package core

import (
	"fmt"
	"strings"
)

type EngineDefaults struct {
	EnvelopeKey  string `koanf:"envelope_key" mapstructure:"envelope_key"`
	IdentityPath string `koanf:"identity_path" mapstructure:"identity_path"`
}

type Config struct {
	ServiceName     string         `koanf:"service_name" mapstructure:"service_name"`
	Engine          EngineDefaults `koanf:"engine" mapstructure:"engine"`
	ActivityEnabled bool           `koanf:"activity_enabled" mapstructure:"activity_enabled"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "transform",
		Engine: EngineDefaults{
			EnvelopeKey:  DefaultEnvelopeKey,
			IdentityPath: DefaultIdentityPath,
		},
		ActivityEnabled: true,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Engine.EnvelopeKey) == "" {
		return fmt.Errorf("core: engine.envelope_key is required")
	}
	if strings.TrimSpace(c.Engine.IdentityPath) == "" {
		return fmt.Errorf("core: engine.identity_path is required")
	}
	return nil
}
