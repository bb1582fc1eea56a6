// internal/config/envname.go
//
// Dotted key → environment variable name.
//
// Context
// -------
// Deployed containers already carry variables named by this rule, so the
// mapping must stay byte-for-byte stable:
//
//	web.port                        → WEB_PORT
//	database.ignoreUnknown          → DATABASE_IGNORE_UNKNOWN
//	config.useEnvironmentVariables  → CONFIG_USE_ENVIRONMENT_VARIABLES
//
// Notes
// -----
//   - The mapping is not injective.  `a.bC` and `a.b.c` both become
//     `A_B_C`; operators must avoid such pairs.
//   - Only ASCII uppercase letters get a leading underscore.

package config

import "strings"

// EnvName returns the environment variable consulted for key when the
// environment tier is enabled.
func EnvName(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 8)
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '.':
			b.WriteByte('_')
		case c >= 'A' && c <= 'Z':
			b.WriteByte('_')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return strings.ToUpper(b.String())
}
