package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for engine tunables. Identity variables (instance,
// bucket, account, app, env) keep the names the hosting platform already sets.
const EnvPrefix = "CONNECTSYNC_"

// platformEnv maps the variables set on the hosting function to config keys.
var platformEnv = map[string]string{
	"AWS_REGION":         "region",
	"CONNECT_INSTANCEID": "instance_id",
	"BUCKET":             "bucket",
	"FUNCTION_ACCOUNT":   "account",
	"FUNCTION_APP":       "app",
	"FUNCTION_ENV":       "env",
}

// Config holds everything a reconciliation run needs from its environment.
type Config struct {
	// Identity
	Region     string `koanf:"region"`
	InstanceID string `koanf:"instance_id"`
	Bucket     string `koanf:"bucket"`
	Account    string `koanf:"account"`
	App        string `koanf:"app"`
	Env        string `koanf:"env"`

	// Desired state
	FlowPrefix  string `koanf:"flow_prefix"`
	Placeholder string `koanf:"placeholder"`

	// Orphans
	OrphanMarker      string `koanf:"orphan_marker"`
	OrphanDescription string `koanf:"orphan_description"`

	// Mapping artifact
	ArtifactKey      string `koanf:"artifact_key"`
	MappingArnParam  string `koanf:"mapping_arn_param"`
	MappingNameParam string `koanf:"mapping_name_param"`

	// Run control
	SoftDeadline   time.Duration `koanf:"soft_deadline"`
	PushgatewayURL string        `koanf:"pushgateway_url"`

	// PutRate caps parameter writes per second. Zero disables pacing.
	PutRate float64 `koanf:"put_rate"`
}

// Default returns a Config with every tunable set; identity fields stay empty.
func Default() *Config {
	return &Config{
		FlowPrefix:        "callflows",
		Placeholder:       "<<ARNREPLACE>>",
		OrphanMarker:      "z_",
		OrphanDescription: "Orphaned Flow",
		ArtifactKey:       "index.zip",
		MappingArnParam:   "MappingFunctionArn",
		MappingNameParam:  "MappingFunctionName",
		SoftDeadline:      30 * time.Second,
		PutRate:           3,
	}
}

// Load reads configuration from the process environment on top of Default().
func Load() (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps an environment variable name to a config key. Unknown variables
// map to "" and are skipped by the provider.
func envKey(name string) string {
	if key, ok := platformEnv[name]; ok {
		return key
	}
	if strings.HasPrefix(name, EnvPrefix) {
		return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	}
	return ""
}

// ParameterName returns the parameter store path for a resource name.
func (c *Config) ParameterName(name string) string {
	return fmt.Sprintf("/%s/%s/%s", c.App, c.Env, name)
}

// LexAliasArn builds the ARN of a bot alias in the configured account and region.
func (c *Config) LexAliasArn(botID, aliasID string) string {
	return fmt.Sprintf("arn:aws:lex:%s:%s:bot-alias/%s/%s", c.Region, c.Account, botID, aliasID)
}

// Validate checks that the configuration is complete and usable.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"region (AWS_REGION)", c.Region},
		{"instance_id (CONNECT_INSTANCEID)", c.InstanceID},
		{"bucket (BUCKET)", c.Bucket},
		{"account (FUNCTION_ACCOUNT)", c.Account},
		{"app (FUNCTION_APP)", c.App},
		{"env (FUNCTION_ENV)", c.Env},
		{"flow_prefix", c.FlowPrefix},
		{"orphan_marker", c.OrphanMarker},
		{"artifact_key", c.ArtifactKey},
		{"mapping_arn_param", c.MappingArnParam},
		{"mapping_name_param", c.MappingNameParam},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if !isValidPathPart(c.App) {
		return fmt.Errorf("app %q is not valid in a parameter path (alphanumeric, dots, dashes, underscores)", c.App)
	}
	if !isValidPathPart(c.Env) {
		return fmt.Errorf("env %q is not valid in a parameter path (alphanumeric, dots, dashes, underscores)", c.Env)
	}

	if c.Placeholder == "" {
		return errors.New("placeholder cannot be empty")
	}
	if c.SoftDeadline < 0 {
		return errors.New("soft_deadline must be non-negative")
	}
	if c.PutRate < 0 {
		return errors.New("put_rate must be non-negative")
	}
	if strings.HasPrefix(c.ArtifactKey, "/") {
		return fmt.Errorf("artifact_key %q must be relative to the bucket", c.ArtifactKey)
	}

	return nil
}

// isValidPathPart checks if a string can be used as one segment of a
// parameter store hierarchy.
func isValidPathPart(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}
