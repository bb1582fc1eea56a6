// internal/config/config.go
//
// Resolver and typed accessors.
//
// Context
// -------
// A *Config answers every read through one precedence chain:
//
//  1. secret store   (when bootstrapped; non-empty values only)
//  2. environment    (when enabled; EnvName(key); non-empty values only)
//  3. property store (defaults overlaid by the main file, plus SetString)
//
// HasKey and GetString walk the same chain, so HasKey(k) is true exactly
// when GetString(k) reports ok.  Typed accessors sit on top of GetString.
//
// Notes
// -----
//   - Secret reads are blocking network calls bounded by the secret
//     timeout.  Use the *Context variants to bound them further.
//   - Pass the *Config (or a Reader) to consumers explicitly.  There is no
//     package-level instance.

package config

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/confchain/internal/metrics"
)

// Reader is the read surface consumers depend on.
type Reader interface {
	HasKey(key string) bool
	GetString(key string) (string, bool)
	String(key, def string) string
	Bool(key string) bool
	IntOr(key string, def int) (int, error)
	Int64Or(key string, def int64) (int64, error)
	Float64Or(key string, def float64) (float64, error)
}

// Config is safe for concurrent use once returned by Load or New.
type Config struct {
	props     *Properties
	useEnv    bool
	secrets   secretTier
	lookupEnv LookupEnvFunc
	log       *zap.SugaredLogger
}

var _ Reader = (*Config)(nil)

// New wraps an in-memory store with the same environment and secret tier
// resolution that Load performs.
func New(props *Properties, opts ...Option) *Config {
	if props == nil {
		props = NewProperties()
	}
	return newConfig(props, newOptions(opts))
}

func newConfig(props *Properties, o *options) *Config {
	c := &Config{
		props:     props,
		lookupEnv: o.lookupEnv,
		log:       o.log,
	}

	envFlag, _ := o.lookupEnv(EnvUseEnvironmentVariables)
	fileFlag, _ := props.Get(KeyUseEnvironmentVariables)
	c.useEnv = parseBool(envFlag) || parseBool(fileFlag)
	c.log.Infow("environment variable tier", "useEnvironmentVariables", c.useEnv)

	dir := ""
	if o.credsPath != nil {
		dir = *o.credsPath
	} else if v, ok := o.lookupEnv(EnvVaultCredsPath); ok {
		dir = v
	}
	c.secrets = trySecrets(dir, o)
	return c
}

// UseEnvironmentVariables reports whether the environment tier is enabled.
func (c *Config) UseEnvironmentVariables() bool { return c.useEnv }

// HasSecretStore reports whether the secret tier was bootstrapped.
func (c *Config) HasSecretStore() bool { return c.secrets.enabled() }

// Properties exposes the backing file tier.
func (c *Config) Properties() *Properties { return c.props }

//
// precedence chain
//

func (c *Config) resolve(ctx context.Context, key string) (string, bool) {
	if v, ok := c.secrets.lookup(ctx, key); ok {
		metrics.LookupsTotal.WithLabelValues("vault").Inc()
		return v, true
	}
	if c.useEnv {
		if v, ok := c.lookupEnv(EnvName(key)); ok && v != "" {
			metrics.LookupsTotal.WithLabelValues("env").Inc()
			return v, true
		}
	}
	if v, ok := c.props.Get(key); ok {
		metrics.LookupsTotal.WithLabelValues("file").Inc()
		return v, true
	}
	metrics.LookupsTotal.WithLabelValues("miss").Inc()
	return "", false
}

// HasKeyContext reports whether any tier defines key.
func (c *Config) HasKeyContext(ctx context.Context, key string) bool {
	_, ok := c.resolve(ctx, key)
	return ok
}

// HasKey is HasKeyContext with a background context.
func (c *Config) HasKey(key string) bool {
	return c.HasKeyContext(context.Background(), key)
}

// GetStringContext returns the highest-precedence value for key.
func (c *Config) GetStringContext(ctx context.Context, key string) (string, bool) {
	return c.resolve(ctx, key)
}

// GetString is GetStringContext with a background context.
func (c *Config) GetString(key string) (string, bool) {
	return c.resolve(context.Background(), key)
}

// String returns the value for key, or def when no tier defines it.
func (c *Config) String(key, def string) string {
	if v, ok := c.GetString(key); ok {
		return v
	}
	return def
}

// SetString writes value into the property tier.  Secret and environment
// values for the same key still take precedence.
func (c *Config) SetString(key, value string) {
	c.props.Set(key, value)
}

//
// typed accessors
//

// Bool is true only when the value is "true", ignoring case.  Absent or any
// other text is false.
func (c *Config) Bool(key string) bool {
	v, _ := c.GetString(key)
	return parseBool(v)
}

// Int returns the value as a 32-bit integer, 0 when absent.
func (c *Config) Int(key string) (int, error) { return c.IntOr(key, 0) }

// IntOr returns the value as a 32-bit integer, def when absent.
func (c *Config) IntOr(key string, def int) (int, error) {
	v, ok := c.GetString(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Type: "int", Err: err}
	}
	return int(n), nil
}

// Int64 returns the value as a 64-bit integer, 0 when absent.
func (c *Config) Int64(key string) (int64, error) { return c.Int64Or(key, 0) }

// Int64Or returns the value as a 64-bit integer, def when absent.
func (c *Config) Int64Or(key string, def int64) (int64, error) {
	v, ok := c.GetString(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Type: "int64", Err: err}
	}
	return n, nil
}

// Float64 returns the value as a float, 0 when absent.
func (c *Config) Float64(key string) (float64, error) { return c.Float64Or(key, 0) }

// Float64Or returns the value as a float, def when absent.  Surrounding
// whitespace is ignored.
func (c *Config) Float64Or(key string, def float64) (float64, error) {
	v, ok := c.GetString(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Type: "float64", Err: err}
	}
	return f, nil
}

func parseBool(s string) bool { return strings.EqualFold(s, "true") }
