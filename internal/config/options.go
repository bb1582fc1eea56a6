// internal/config/options.go
//
// Functional options for Load and New.

package config

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/confchain/internal/vault"
)

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

type options struct {
	log           *zap.SugaredLogger
	lookupEnv     LookupEnvFunc
	secretPath    string
	secretTimeout time.Duration
	credsPath     *string
	secrets       SecretFetcher
}

// Option configures Load and New.
type Option func(*options)

// WithLogger sets the logger.  Default is zap.S() at construction time.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.log = l }
}

// WithLookupEnv replaces os.LookupEnv for every environment read, including
// CONFIG_USE_ENVIRONMENT_VARIABLES and CONFIG_KUBE_VAULT_CREDS_PATH.
func WithLookupEnv(fn LookupEnvFunc) Option {
	return func(o *options) { o.lookupEnv = fn }
}

// WithSecretPath overrides the logical Vault path holding all secrets.
func WithSecretPath(p string) Option {
	return func(o *options) { o.secretPath = p }
}

// WithSecretTimeout bounds each Vault read.
func WithSecretTimeout(d time.Duration) Option {
	return func(o *options) { o.secretTimeout = d }
}

// WithCredsPath overrides CONFIG_KUBE_VAULT_CREDS_PATH.  An empty string
// disables the secret tier.
func WithCredsPath(dir string) Option {
	return func(o *options) { o.credsPath = &dir }
}

// WithSecretStore installs an already-built secret store, skipping the
// credential bootstrap.
func WithSecretStore(f SecretFetcher) Option {
	return func(o *options) { o.secrets = f }
}

func newOptions(opts []Option) *options {
	o := &options{
		lookupEnv:     os.LookupEnv,
		secretPath:    DefaultSecretPath,
		secretTimeout: vault.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = zap.S()
	}
	if o.secretPath == "" {
		o.secretPath = DefaultSecretPath
	}
	return o
}
