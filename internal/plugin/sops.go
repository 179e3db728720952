package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/stevedore/internal/cluster"
)

// SOPSFetcher serves container environment from a SOPS-encrypted YAML file
// instead of a remote config service. The decrypted document has an "env"
// section applied to every container, plus optional per-container sections:
//
//	env:
//	  LOG_LEVEL: info
//	node-auth:
//	  DB_PASSWORD: hunter2
type SOPSFetcher struct {
	// File is the path to the encrypted secrets file.
	File string

	cached map[string]map[string]string
}

// NewSOPSFetcher returns a fetcher backed by the given secrets file.
func NewSOPSFetcher(file string) *SOPSFetcher {
	return &SOPSFetcher{File: file}
}

// Fetch decrypts the secrets file once and returns the shared environment
// merged with the container's own section.
func (s *SOPSFetcher) Fetch(_ context.Context, artifact *cluster.Artifact, _ *cluster.Definition) (*FetchedConfig, error) {
	if s.cached == nil {
		cleartext, err := decrypt.File(s.File, "yaml")
		if err != nil {
			return nil, fmt.Errorf("decrypt secrets %s: %w", s.File, err)
		}
		if err := yaml.Unmarshal(cleartext, &s.cached); err != nil {
			return nil, fmt.Errorf("parse secrets %s: %w", s.File, err)
		}
		if s.cached == nil {
			s.cached = make(map[string]map[string]string)
		}
	}

	merged := make(map[string]string)
	for name, value := range s.cached["env"] {
		merged[name] = value
	}
	for name, value := range s.cached[artifact.Name] {
		merged[name] = value
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	env := make([]cluster.EnvVar, 0, len(names))
	for _, name := range names {
		env = append(env, cluster.EnvVar{Name: name, Value: merged[name]})
	}
	return &FetchedConfig{Env: env}, nil
}
