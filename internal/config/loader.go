package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of first-class environment variables.
const EnvPrefix = "QC_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = "QC_CONFIG"

// legacyEnv maps the environment names used by the deployed pipeline
// definition onto config keys. QC_* variables take precedence over them.
var legacyEnv = map[string]string{
	"QUALITY_RULES_BUCKET":      "rules_bucket",
	"QUALITY_RULES_KEY":         "rules_key",
	"REPORTS_TABLE_NAME":        "reports_table",
	"QUALITY_EVENT_BUS_NAME":    "event_bus_name",
	"QUALITY_EVENT_SOURCE":      "event_source",
	"QUALITY_EVENT_DETAIL_TYPE": "event_detail_type",
	"AWS_REGION":                "aws_region",
	"AWS_ENDPOINT_URL":          "aws_endpoint",
	"S3_ENDPOINT_URL":           "s3_endpoint",
	"DYNAMODB_ENDPOINT_URL":     "dynamodb_endpoint",
	"EVENTS_ENDPOINT_URL":       "events_endpoint",
}

// fallbackEnv is read before legacyEnv, so AWS_REGION wins when both are set.
var fallbackEnv = map[string]string{
	"AWS_DEFAULT_REGION": "aws_region",
}

// Load builds a Config by layering sources. Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file if QC_CONFIG is set
//  3. AWS_DEFAULT_REGION
//  4. legacy pipeline variables (QUALITY_RULES_BUCKET, ...)
//  5. env (prefix QC_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	fallback := env.Provider("", ".", func(s string) string {
		return fallbackEnv[s]
	})
	if err := k.Load(fallback, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// QC_RULES_BUCKET -> rules_bucket; underscores are kept to match the
	// koanf tags on the struct.
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		if s == FileEnv {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.trim()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) trim() {
	c.RulesBucket = strings.TrimSpace(c.RulesBucket)
	c.RulesKey = strings.TrimSpace(c.RulesKey)
	c.ReportsTable = strings.TrimSpace(c.ReportsTable)
	c.ReportsIndex = strings.TrimSpace(c.ReportsIndex)
	c.EventBusName = strings.TrimSpace(c.EventBusName)
	c.EventSource = strings.TrimSpace(c.EventSource)
	c.EventDetailType = strings.TrimSpace(c.EventDetailType)
	c.AWSRegion = strings.TrimSpace(c.AWSRegion)
	c.AWSEndpoint = strings.TrimSpace(c.AWSEndpoint)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.DynamoDBEndpoint = strings.TrimSpace(c.DynamoDBEndpoint)
	c.EventsEndpoint = strings.TrimSpace(c.EventsEndpoint)
}

// Validate reports the first missing or out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RulesBucket == "":
		return fmt.Errorf("%w: rules_bucket is required", ErrInvalidConfig)
	case c.RulesKey == "":
		return fmt.Errorf("%w: rules_key is required", ErrInvalidConfig)
	case c.ReportsTable != "" && c.ReportsIndex == "":
		return fmt.Errorf("%w: reports_index is required when reports_table is set", ErrInvalidConfig)
	case c.LookupConcurrency < 1:
		return fmt.Errorf("%w: lookup_concurrency must be at least 1", ErrInvalidConfig)
	case c.EventBusName != "" && (c.EventSource == "" || c.EventDetailType == ""):
		return fmt.Errorf("%w: event_source and event_detail_type are required when event_bus_name is set", ErrInvalidConfig)
	}
	return nil
}
