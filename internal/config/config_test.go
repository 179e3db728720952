package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "exports", s.ExportDir)
	assert.Equal(t, "registry.internal", s.RegistryPrefix)
	assert.Equal(t, "release", s.ReleaseLabel)
	assert.Equal(t, "commit-sha-images", s.CommitImagesFlag)
	assert.Equal(t, "stevedore", s.AppID)
	assert.Equal(t, "svc.yaml.tmpl", s.ServiceTemplate)
	assert.Empty(t, s.ConfigServiceURL)
	assert.Empty(t, s.SecretsFile)
}

func TestLoadSettingsFromEnvironment(t *testing.T) {
	t.Setenv("STEVEDORE_EXPORT_DIR", "/tmp/manifests")
	t.Setenv("STEVEDORE_REGISTRY_PREFIX", "registry.example.com")
	t.Setenv("STEVEDORE_CONFIG_SERVICE_URL", "https://config.internal")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/manifests", s.ExportDir)
	assert.Equal(t, "registry.example.com", s.RegistryPrefix)
	assert.Equal(t, "https://config.internal", s.ConfigServiceURL)
	// untouched settings keep their defaults
	assert.Equal(t, "release", s.ReleaseLabel)
}

func TestFindRootFrom(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "clusters"), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := findRootFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindRootFromMissing(t *testing.T) {
	_, err := findRootFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clusters/")
}

func TestProjectPaths(t *testing.T) {
	p := &Project{Root: "/srv/deploy"}
	assert.Equal(t, filepath.Join("/srv/deploy", "clusters"), p.ClustersDir())
	assert.Equal(t, filepath.Join("/srv/deploy", "clusters", "images.yaml"), p.ImagesFile())
}
