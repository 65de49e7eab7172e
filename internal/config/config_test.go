package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STOREFRONT_CONFIG", "STOREFRONT_API_URL", "STOREFRONT_PAYMENT_URL", "STRIPE_PUBLISHABLE_KEY",
		"STOREFRONT_CART_POLICY", "STOREFRONT_TIMEOUT", "STOREFRONT_STORE", "STOREFRONT_STATE_PATH",
		"DATABASE_URL", "REDIS_ADDR", "DYNAMODB_TABLE", "STOREFRONT_NAMESPACE", "KAFKA_BROKERS",
		"KAFKA_TOPIC", "SANDBOX_ADDR", "JWT_SECRET", "SANDBOX_ADMIN_EMAIL", "SANDBOX_ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ============================================
// Load Tests
// ============================================

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/", cfg.APIURL)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "resync_on_error", cfg.CartPolicy)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
api_url: https://shop.example.com/api/
timeout: 3s
cart_policy: fail_fast
store:
  backend: redis
  redis_addr: cache:6379
kafka:
  brokers: [k1:9092, k2:9092]
sandbox:
  token_ttl: 1h
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api/", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "fail_fast", cfg.CartPolicy)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "default", cfg.Store.Namespace, "unset keys keep defaults")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Sandbox.TokenTTL)
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_CONFIG", writeFile(t, "store:\n  backend: memory\n"))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "api_url: https://file.example.com/api/\n")
	t.Setenv("STOREFRONT_API_URL", "https://env.example.com/api/")
	t.Setenv("KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("STOREFRONT_TIMEOUT", "750ms")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api/", cfg.APIURL)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "timeout: [not a duration\n"))

	assert.ErrorContains(t, err, "failed to parse config file")
}

// ============================================
// Sandbox Validation Tests
// ============================================

func TestValidateSandbox(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.ValidateSandbox(), ErrJWTSecretRequired)

	cfg.Sandbox.JWTSecret = "short"
	assert.ErrorIs(t, cfg.ValidateSandbox(), ErrJWTSecretTooShort)

	cfg.Sandbox.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.ValidateSandbox())
}
