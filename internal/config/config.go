// Package config handles project discovery and environment settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Settings are the environment-driven knobs, read with the STEVEDORE prefix.
type Settings struct {
	// ExportDir is the root directory for generated manifests, one
	// subdirectory per cluster.
	ExportDir string `envconfig:"EXPORT_DIR" default:"exports"`

	// RegistryPrefix prefixes commit-based image references.
	RegistryPrefix string `envconfig:"REGISTRY_PREFIX" default:"registry.internal"`

	// ReleaseLabel is the tag label for commit-based images,
	// e.g. "release" in ":release-<sha>".
	ReleaseLabel string `envconfig:"RELEASE_LABEL" default:"release"`

	// CommitImagesFlag is the feature toggle gating commit-based resolution.
	CommitImagesFlag string `envconfig:"COMMIT_IMAGES_FLAG" default:"commit-sha-images"`

	// AppID tags every emitted metric.
	AppID string `envconfig:"APP_ID" default:"stevedore"`

	// ConfigServiceURL enables the HTTP configuration fetcher when set.
	ConfigServiceURL string `envconfig:"CONFIG_SERVICE_URL"`

	// FlagServiceURL enables the HTTP feature-flag client when set.
	FlagServiceURL string `envconfig:"FLAG_SERVICE_URL"`

	// SecretsFile enables the SOPS-backed fetcher when set and no config
	// service is configured.
	SecretsFile string `envconfig:"SECRETS_FILE"`

	// ServiceTemplate is the shared service template, relative to the
	// clusters directory unless absolute.
	ServiceTemplate string `envconfig:"SERVICE_TEMPLATE" default:"svc.yaml.tmpl"`
}

// LoadSettings reads settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("stevedore", &s); err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return s, nil
}

// Project locates the directories of a stevedore project.
type Project struct {
	// Root is the project root (contains clusters/).
	Root string
}

// FindRoot searches upward from the current directory for a directory
// containing clusters/.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return findRootFrom(dir)
}

func findRootFrom(dir string) (string, error) {
	for {
		clustersDir := filepath.Join(dir, "clusters")
		if info, err := os.Stat(clustersDir); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("project root not found (no clusters/ directory)")
}

// Load finds the project root and returns a Project.
func Load() (*Project, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return &Project{Root: root}, nil
}

// ClustersDir returns the path to the cluster definitions directory.
func (p *Project) ClustersDir() string {
	return filepath.Join(p.Root, "clusters")
}

// ImagesFile returns the path to the image lookup table.
func (p *Project) ImagesFile() string {
	return filepath.Join(p.ClustersDir(), "images.yaml")
}
