// internal/config/errors.go
//
// Error kinds surfaced by the config package.
//
// Context
// -------
//   - *LoadError       file open or parse failure.  Fatal at startup.
//   - *BootstrapError  secret-store setup failure.  Logged and swallowed
//                      by Load; exported so vault callers can inspect it.
//   - *ParseError      a present value is not a literal of the requested
//                      type.  Returned to the caller.
//
// Absence is never an error.  Accessors report it as (value, false) or by
// returning the caller's default.

package config

import (
	"fmt"

	"github.com/yanizio/confchain/internal/vault"
)

// LoadError reports a property file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// BootstrapError is the vault package's setup error, re-exported so callers
// of this package need not import vault to match it with errors.As.
type BootstrapError = vault.BootstrapError

// ParseError reports a value that does not parse as the requested type.
type ParseError struct {
	Key   string
	Value string
	Type  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: key %q: cannot parse %q as %s: %v", e.Key, e.Value, e.Type, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
