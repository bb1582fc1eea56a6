// internal/config/secrets.go
//
// Secret-store tier.
//
// Context
// -------
// The tier is decided once, in Load or New, and never changes:
//
//   - noSecrets     CONFIG_KUBE_VAULT_CREDS_PATH unset, or bootstrap failed.
//   - vaultSecrets  a bootstrapped *vault.Client plus the fixed secret path.
//
// Read errors, timeouts, empty values, and missing keys are all a miss for
// this tier; the resolver then falls through to the environment and file
// tiers.

package config

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanizio/confchain/internal/metrics"
	"github.com/yanizio/confchain/internal/vault"
)

// SecretFetcher is the read capability of a secret store.  *vault.Client
// satisfies it.
type SecretFetcher interface {
	Fetch(ctx context.Context, secretPath, key string) (string, bool, error)
}

type secretTier interface {
	lookup(ctx context.Context, key string) (string, bool)
	enabled() bool
}

type noSecrets struct{}

func (noSecrets) lookup(context.Context, string) (string, bool) { return "", false }
func (noSecrets) enabled() bool                                 { return false }

type vaultSecrets struct {
	client SecretFetcher
	path   string
	log    *zap.SugaredLogger
}

func (s vaultSecrets) enabled() bool { return true }

func (s vaultSecrets) lookup(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.client.Fetch(ctx, s.path, key)
	if err != nil {
		metrics.SecretReadErrorsTotal.Inc()
		s.log.Infow("vault read failed", "key", key, "err", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	s.log.Debugw("found value in vault", "key", key)
	return v, true
}

// trySecrets bootstraps the secret tier from dir.  It never fails: an empty
// dir or any bootstrap error yields noSecrets.
func trySecrets(dir string, o *options) secretTier {
	if o.secrets != nil {
		return vaultSecrets{client: o.secrets, path: o.secretPath, log: o.log}
	}
	if dir == "" {
		return noSecrets{}
	}

	o.log.Infow("configuring vault using kubernetes-vault", "dir", dir)
	cli, err := vault.Bootstrap(dir, vault.WithTimeout(o.secretTimeout))
	if err != nil {
		metrics.SecretBootstrapTotal.WithLabelValues("failed").Inc()
		o.log.Warnw("vault bootstrap failed, continuing without secret store", "dir", dir, "err", err)
		return noSecrets{}
	}

	metrics.SecretBootstrapTotal.WithLabelValues("ok").Inc()
	o.log.Infow("vault configured", "addr", cli.Addr(), "path", o.secretPath)
	return vaultSecrets{client: cli, path: o.secretPath, log: o.log}
}
