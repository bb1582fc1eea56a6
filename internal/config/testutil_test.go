package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// xmlFile writes an XML properties document with the given entries into dir.
func xmlFile(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<?xml version='1.0' encoding='UTF-8'?>\n")
	b.WriteString("<!DOCTYPE properties SYSTEM 'http://java.sun.com/dtd/properties.dtd'>\n")
	b.WriteString("<properties>\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "    <entry key='%s'>%s</entry>\n", k, entries[k])
	}
	b.WriteString("</properties>\n")

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// envMap is an injectable environment.
type envMap map[string]string

func (e envMap) lookup(k string) (string, bool) {
	v, ok := e[k]
	return v, ok
}

// fakeSecrets satisfies SecretFetcher.
type fakeSecrets struct {
	mu    sync.Mutex
	data  map[string]string
	err   error
	calls int
	path  string
}

func (f *fakeSecrets) Fetch(ctx context.Context, secretPath, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.path = secretPath
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

var errVaultDown = errors.New("vault down")

// quiet returns options that isolate a test from the process environment.
func quiet(env envMap, extra ...Option) []Option {
	return append([]Option{
		WithLogger(zap.NewNop().Sugar()),
		WithLookupEnv(env.lookup),
	}, extra...)
}
