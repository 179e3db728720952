// Package plugin defines the external capability interfaces the generation
// pipeline depends on: remote configuration fetch and feature-flag
// evaluation. Absent capabilities are modeled as Unset implementations
// returning ErrNotConfigured, so callers branch on a sentinel instead of
// nil checks.
package plugin

import (
	"context"
	"errors"

	"github.com/cameronsjo/stevedore/internal/cluster"
)

// ErrNotConfigured marks a capability that has no backing implementation.
var ErrNotConfigured = errors.New("capability not configured")

// FetchedConfig is the result of a configuration fetch for one container.
type FetchedConfig struct {
	// Env is the externally loaded environment.
	Env []cluster.EnvVar

	// Fields are additional configuration keys; they take precedence over
	// same-named artifact fields on merge.
	Fields map[string]any
}

// ConfigFetcher loads external configuration for a container artifact.
type ConfigFetcher interface {
	Fetch(ctx context.Context, artifact *cluster.Artifact, def *cluster.Definition) (*FetchedConfig, error)
}

// FeatureFlags evaluates named feature toggles. Evaluation failures are
// advisory: callers fall back to the default strategy.
type FeatureFlags interface {
	Toggle(ctx context.Context, feature string) (bool, error)
}

// UnsetFetcher is the null ConfigFetcher.
type UnsetFetcher struct{}

func (UnsetFetcher) Fetch(context.Context, *cluster.Artifact, *cluster.Definition) (*FetchedConfig, error) {
	return nil, ErrNotConfigured
}

// UnsetFlags is the null FeatureFlags client.
type UnsetFlags struct{}

func (UnsetFlags) Toggle(context.Context, string) (bool, error) {
	return false, ErrNotConfigured
}

// StaticFlags evaluates toggles from a fixed map. Unknown features are
// disabled. Used by tests and offline runs.
type StaticFlags map[string]bool

func (s StaticFlags) Toggle(_ context.Context, feature string) (bool, error) {
	return s[feature], nil
}

// StaticFetcher returns a fixed result for every artifact. Used by tests.
type StaticFetcher struct {
	Env    []cluster.EnvVar
	Fields map[string]any
	Err    error

	// Calls counts Fetch invocations.
	Calls int
}

func (s *StaticFetcher) Fetch(context.Context, *cluster.Artifact, *cluster.Definition) (*FetchedConfig, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return &FetchedConfig{Env: s.Env, Fields: s.Fields}, nil
}
