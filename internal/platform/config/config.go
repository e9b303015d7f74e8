package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string   `env:"SERVICE_NAME" envDefault:"helix"`
	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string   `env:"POSTGRES_DSN"`
	Brokers     []string `env:"BROKER_ADDRS" envSeparator:"," envDefault:"localhost:9092"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"helix-dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	// MRNKeyHex is the hex-encoded 32-byte key for encrypting medical record
	// numbers at rest.
	MRNKeyHex    string `env:"MRN_KEY_HEX" envDefault:"6368616e676520746869732068656c69782064657620656e6372797074696f6e"`
	ArtifactRoot string `env:"ARTIFACT_ROOT" envDefault:"/var/lib/helix/artifacts"`

	SchedulerPollInterval time.Duration `env:"SCHEDULER_POLL_INTERVAL" envDefault:"2s"`
	WorkflowLeaseTTL      time.Duration `env:"WORKFLOW_LEASE_TTL" envDefault:"5m"`
	WorkflowMaxAttempts   int           `env:"WORKFLOW_MAX_ATTEMPTS" envDefault:"3"`

	VitalsWindowSize     int     `env:"VITALS_WINDOW_SIZE" envDefault:"12"`
	VitalsTrendDeviation float64 `env:"VITALS_TREND_DEVIATION" envDefault:"0.25"`

	EnableVitalsBridge     bool `env:"ENABLE_VITALS_BRIDGE" envDefault:"true"`
	EnableWorkflowReaper   bool `env:"ENABLE_WORKFLOW_REAPER" envDefault:"true"`
	EnableOutboxRelays     bool `env:"ENABLE_OUTBOX_RELAYS" envDefault:"true"`
	EnablePlanAutoWorkflow bool `env:"ENABLE_PLAN_AUTO_WORKFLOW" envDefault:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment config: %w", err)
	}
	return cfg, nil
}
