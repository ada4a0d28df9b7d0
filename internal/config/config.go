// Package config defines the quality-check stage configuration and how it is
// loaded from defaults, an optional YAML file and the environment.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RulesBucket and RulesKey locate the rule document in object storage.
	RulesBucket string `koanf:"rules_bucket"`
	RulesKey    string `koanf:"rules_key"`

	// ReportsTable enables duplicate detection against persisted reports.
	// Empty disables the lookup.
	ReportsTable string `koanf:"reports_table"`

	// ReportsIndex is the secondary index keyed by report id.
	ReportsIndex string `koanf:"reports_index"`

	// LookupConcurrency bounds parallel persisted-store lookups per batch.
	LookupConcurrency int `koanf:"lookup_concurrency"`

	// EventBusName enables publishing of the verdict event. Empty disables it.
	EventBusName    string `koanf:"event_bus_name"`
	EventSource     string `koanf:"event_source"`
	EventDetailType string `koanf:"event_detail_type"`

	// AWSRegion and AWSEndpoint configure the SDK clients. AWSEndpoint is an
	// override for local stacks and is normally empty.
	AWSRegion   string `koanf:"aws_region"`
	AWSEndpoint string `koanf:"aws_endpoint"`

	// Per-service endpoint overrides. Each one wins over AWSEndpoint for
	// its own client.
	S3Endpoint       string `koanf:"s3_endpoint"`
	DynamoDBEndpoint string `koanf:"dynamodb_endpoint"`
	EventsEndpoint   string `koanf:"events_endpoint"`

	// MetricsLabels are constant labels added to every exported metric,
	// e.g. stage or env. Set from the YAML file.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ReportsIndex:      "GSI1",
		LookupConcurrency: 8,
		EventSource:       "stat.tracker.quality",
		EventDetailType:   "csv.quality",
		AWSRegion:         "us-east-1",
	}
}
