package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Endpoint is one row of the endpoint table.
type Endpoint struct {
	Key    domain.EndpointKey
	URL    string
	Source string
}

const (
	sourceDefault = "default"
	sourceFile    = "file"
	sourceEnv     = "env"
)

// Endpoints maps logical webhook names to URLs. Values are layered:
// compiled-in defaults, then the endpoints file, then WEBHOOK_<KEY> variables.
// It is safe for concurrent use; the file layer may be swapped at runtime.
type Endpoints struct {
	mu       sync.RWMutex
	defaults map[domain.EndpointKey]string
	file     map[domain.EndpointKey]string
	env      map[domain.EndpointKey]string
}

// endpointsFile is the YAML layout of ENDPOINTS_FILE.
type endpointsFile struct {
	Endpoints map[string]string `yaml:"endpoints"`
}

// NewEndpoints builds the table from the base URL and environment overrides.
func NewEndpoints(baseURL string, getenv func(string) string) *Endpoints {
	e := &Endpoints{
		defaults: make(map[domain.EndpointKey]string, len(domain.EndpointKeys)),
		file:     map[domain.EndpointKey]string{},
		env:      map[domain.EndpointKey]string{},
	}
	base := strings.TrimRight(baseURL, "/")
	for _, key := range domain.EndpointKeys {
		e.defaults[key] = base + "/" + key.Kebab()
		if getenv != nil {
			if v := strings.TrimSpace(getenv(key.EnvName())); v != "" {
				e.env[key] = v
			}
		}
	}
	return e
}

// URL resolves the URL for key.
func (e *Endpoints) URL(key domain.EndpointKey) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	row, ok := e.lookup(key)
	return row.URL, ok
}

// Snapshot returns every endpoint in EndpointKeys order.
func (e *Endpoints) Snapshot() []Endpoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rows := make([]Endpoint, 0, len(domain.EndpointKeys))
	for _, key := range domain.EndpointKeys {
		if row, ok := e.lookup(key); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func (e *Endpoints) lookup(key domain.EndpointKey) (Endpoint, bool) {
	if v, ok := e.env[key]; ok {
		return Endpoint{Key: key, URL: v, Source: sourceEnv}, true
	}
	if v, ok := e.file[key]; ok {
		return Endpoint{Key: key, URL: v, Source: sourceFile}, true
	}
	if v, ok := e.defaults[key]; ok {
		return Endpoint{Key: key, URL: v, Source: sourceDefault}, true
	}
	return Endpoint{}, false
}

// LoadFile replaces the file layer with the contents of path. On error the
// previous file layer stays in effect.
func (e *Endpoints) LoadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read endpoints file: %w", err)
	}

	var doc endpointsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse endpoints file %s: %w", path, err)
	}

	layer := make(map[domain.EndpointKey]string, len(doc.Endpoints))
	for name, url := range doc.Endpoints {
		key := domain.EndpointKey(name)
		if !key.Valid() {
			return fmt.Errorf("endpoints file %s: %w: %q", path, domain.ErrUnknownEndpoint, name)
		}
		if url = strings.TrimSpace(url); url != "" {
			layer[key] = url
		}
	}

	e.mu.Lock()
	e.file = layer
	e.mu.Unlock()
	return nil
}
