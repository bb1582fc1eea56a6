// internal/vault/vault.go
//
// Secret-store client bootstrapped from kubernetes-vault credentials.
//
// Context
// -------
// A sidecar drops a credential bundle into a local directory:
//
//	<dir>/vault-token   JSON {"vaultAddr": "...", "clientToken": "..."}
//	<dir>/ca.crt        optional PEM trust anchor for the Vault listener
//
// Bootstrap turns that bundle into a *Client bound to the address with the
// token as bearer, trusting ca.crt when present and the system pool
// otherwise.  The config package treats any Bootstrap error as "no secret
// store".
//
// Public workflow
// ---------------
//  1. cli, err := vault.Bootstrap(dir)                       // at startup.
//  2. v, ok, err := cli.Fetch(ctx, "secret/traccar", key)    // per read.
//
// Notes
// -----
//   - Every Fetch is bounded by the client timeout (DefaultTimeout unless
//     overridden).  Nothing is cached; a rotated secret is visible on the
//     next read.
//   - KV v2 envelopes (`data` next to `metadata`) are unwrapped, so both v1
//     paths such as `secret/traccar` and v2 paths such as
//     `secret/data/traccar` work.
//   - Ambient VAULT_* variables are ignored.  The bundle alone decides the
//     address, token, and trust.
//   - The token is not renewed here; the sidecar owns its lifecycle.
package vault

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Credential bundle
//

const (
	TokenFile      = "vault-token"
	CACertFile     = "ca.crt"
	DefaultTimeout = 5 * time.Second
)

// Credentials is the decoded vault-token file plus the resolved CA path.
type Credentials struct {
	VaultAddr   string `json:"vaultAddr"   validate:"required,url"`
	ClientToken string `json:"clientToken" validate:"required"`
	CACert      string `json:"-"` // empty → default trust
}

var validate = validator.New()

// BootstrapError reports why a client could not be built from dir.
type BootstrapError struct {
	Dir  string
	Step string // credentials, tls, or client
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("vault bootstrap (%s) from %s: %v", e.Step, e.Dir, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// ReadCredentials loads and validates the bundle under dir.
func ReadCredentials(dir string) (*Credentials, error) {
	if dir == "" {
		return nil, &BootstrapError{Dir: dir, Step: "credentials", Err: errors.New("credentials path is empty")}
	}

	raw, err := os.ReadFile(filepath.Join(dir, TokenFile))
	if err != nil {
		return nil, &BootstrapError{Dir: dir, Step: "credentials", Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, &BootstrapError{Dir: dir, Step: "credentials", Err: fmt.Errorf("decode %s: %w", TokenFile, err)}
	}
	if err := validate.Struct(&creds); err != nil {
		return nil, &BootstrapError{Dir: dir, Step: "credentials", Err: err}
	}

	ca := filepath.Join(dir, CACertFile)
	if fi, err := os.Stat(ca); err == nil && !fi.IsDir() {
		creds.CACert = ca
	}
	return &creds, nil
}

//
// SECTION 2.  Client
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api     *vault.Client
	addr    string
	timeout time.Duration
}

// Option tunes a Client.
type Option func(*Client)

// WithTimeout bounds each Fetch.  Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Bootstrap reads the bundle under dir and builds a Client from it.
func Bootstrap(dir string, opts ...Option) (*Client, error) {
	creds, err := ReadCredentials(dir)
	if err != nil {
		return nil, err
	}
	cli, err := New(creds, opts...)
	if err != nil {
		var be *BootstrapError
		if errors.As(err, &be) {
			be.Dir = dir
		}
		return nil, err
	}
	return cli, nil
}

// New builds a Client from already-loaded credentials.
func New(creds *Credentials, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, &BootstrapError{Step: "credentials", Err: errors.New("nil credentials")}
	}

	c := &Client{addr: creds.VaultAddr, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	cfg, err := isolatedConfig(creds.VaultAddr, c.timeout)
	if err != nil {
		return nil, &BootstrapError{Step: "client", Err: err}
	}
	if creds.CACert != "" {
		if err := cfg.ConfigureTLS(&vault.TLSConfig{CACert: creds.CACert}); err != nil {
			return nil, &BootstrapError{Step: "tls", Err: err}
		}
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, &BootstrapError{Step: "client", Err: err}
	}
	// NewClient re-reads VAULT_NAMESPACE, VAULT_HEADERS, and VAULT_TOKEN.
	apiCli.SetHeaders(http.Header{})
	apiCli.ClearNamespace()
	apiCli.SetToken(creds.ClientToken)

	c.api = apiCli
	return c, nil
}

// isolatedConfig returns a vault.DefaultConfig with every setting that
// ReadEnvironment may have taken from VAULT_* variables reset, so the client
// talks only to addr and trusts only the system pool until ConfigureTLS.
// A ReadEnvironment failure is discarded for the same reason.
func isolatedConfig(addr string, timeout time.Duration) (*vault.Config, error) {
	cfg := vault.DefaultConfig()
	cfg.Error = nil

	tr, ok := cfg.HttpClient.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected vault transport %T", cfg.HttpClient.Transport)
	}
	tr.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	tr.Proxy = http.ProxyFromEnvironment

	cfg.HttpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	cfg.Address = addr
	cfg.AgentAddress = ""
	cfg.SRVLookup = false
	cfg.DisableRedirects = false
	cfg.Limiter = nil
	cfg.MaxRetries = 2
	cfg.Timeout = timeout
	return cfg, nil
}

// Addr returns the Vault address the client is bound to.
func (c *Client) Addr() string { return c.addr }

// Fetch reads the secret at secretPath and returns the value stored under
// key.  A missing path or key yields ok == false with a nil error.
func (c *Client) Fetch(ctx context.Context, secretPath, key string) (string, bool, error) {
	if secretPath == "" || key == "" {
		return "", false, errors.New("vault: secret path and key must be non-empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sec, err := c.api.Logical().ReadWithContext(ctx, secretPath)
	if err != nil {
		return "", false, fmt.Errorf("vault read %s: %w", secretPath, err)
	}
	if sec == nil || sec.Data == nil {
		return "", false, nil
	}

	data := sec.Data
	if inner, ok := data["data"].(map[string]interface{}); ok {
		if _, v2 := data["metadata"]; v2 {
			data = inner
		}
	}

	raw, ok := data[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	if s, ok := raw.(string); ok {
		return s, true, nil
	}
	return fmt.Sprint(raw), true, nil
}
