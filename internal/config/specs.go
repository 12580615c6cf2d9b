package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	JWTSigningSecret string        `envconfig:"jwt_signing_secret" required:"true"`
	SessionLifetime  time.Duration `envconfig:"session_lifetime" default:"24h"`

	// WebhookSecret guards the signup registration webhook. Empty disables it.
	WebhookSecret string `envconfig:"webhook_secret" default:""`

	// Optional OIDC machine access for super-admin automation clients.
	OIDCIssuer          string   `envconfig:"oidc_issuer" default:""`
	OIDCJWKSURL         string   `envconfig:"oidc_jwks_url" default:""`
	OIDCAllowedSubjects []string `envconfig:"oidc_allowed_subjects" default:""`
	OIDCRequiredScope   string   `envconfig:"oidc_required_scope" default:""`
}
