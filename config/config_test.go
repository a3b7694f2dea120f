package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPlatformEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_REGION", "eu-west-2")
	t.Setenv("CONNECT_INSTANCEID", "11111111-2222-3333-4444-555555555555")
	t.Setenv("BUCKET", "callflow-bucket")
	t.Setenv("FUNCTION_ACCOUNT", "123456789012")
	t.Setenv("FUNCTION_APP", "acme")
	t.Setenv("FUNCTION_ENV", "dev")
}

func validConfig() *Config {
	cfg := Default()
	cfg.Region = "eu-west-2"
	cfg.InstanceID = "instance"
	cfg.Bucket = "bucket"
	cfg.Account = "123456789012"
	cfg.App = "acme"
	cfg.Env = "dev"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "callflows", cfg.FlowPrefix)
	assert.Equal(t, "<<ARNREPLACE>>", cfg.Placeholder)
	assert.Equal(t, "z_", cfg.OrphanMarker)
	assert.Equal(t, "Orphaned Flow", cfg.OrphanDescription)
	assert.Equal(t, "index.zip", cfg.ArtifactKey)
	assert.Equal(t, 30*time.Second, cfg.SoftDeadline)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, 3.0, cfg.PutRate)
}

func TestLoad_PlatformEnvironment(t *testing.T) {
	setPlatformEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-west-2", cfg.Region)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", cfg.InstanceID)
	assert.Equal(t, "callflow-bucket", cfg.Bucket)
	assert.Equal(t, "123456789012", cfg.Account)
	assert.Equal(t, "acme", cfg.App)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "callflows", cfg.FlowPrefix)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Tunables(t *testing.T) {
	setPlatformEnv(t)
	t.Setenv("CONNECTSYNC_SOFT_DEADLINE", "45s")
	t.Setenv("CONNECTSYNC_ORPHAN_MARKER", "zz_")
	t.Setenv("CONNECTSYNC_PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("CONNECTSYNC_PUT_RATE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.SoftDeadline)
	assert.Equal(t, "zz_", cfg.OrphanMarker)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
	assert.Equal(t, "Orphaned Flow", cfg.OrphanDescription)
	assert.Equal(t, 0.5, cfg.PutRate)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "instance_id", envKey("CONNECT_INSTANCEID"))
	assert.Equal(t, "artifact_key", envKey("CONNECTSYNC_ARTIFACT_KEY"))
	assert.Equal(t, "", envKey("HOME"))
}

func TestParameterName(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "/acme/dev/MappingFunctionArn", cfg.ParameterName("MappingFunctionArn"))
}

func TestLexAliasArn(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t,
		"arn:aws:lex:eu-west-2:123456789012:bot-alias/BOTID/ALIASID",
		cfg.LexAliasArn("BOTID", "ALIASID"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing region", func(c *Config) { c.Region = "" }, "region"},
		{"missing instance", func(c *Config) { c.InstanceID = " " }, "instance_id"},
		{"missing bucket", func(c *Config) { c.Bucket = "" }, "bucket"},
		{"app with slash", func(c *Config) { c.App = "acme/prod" }, "app"},
		{"env with space", func(c *Config) { c.Env = "dev test" }, "env"},
		{"empty placeholder", func(c *Config) { c.Placeholder = "" }, "placeholder"},
		{"negative deadline", func(c *Config) { c.SoftDeadline = -time.Second }, "soft_deadline"},
		{"negative put rate", func(c *Config) { c.PutRate = -1 }, "put_rate"},
		{"unpaced writes", func(c *Config) { c.PutRate = 0 }, ""},
		{"absolute artifact key", func(c *Config) { c.ArtifactKey = "/index.zip" }, "artifact_key"},
		{"empty orphan marker", func(c *Config) { c.OrphanMarker = "" }, "orphan_marker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
