package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefinitionUnmarshal(t *testing.T) {
	doc := `
name: staging
environment: staging
namespace: apps
branch: develop
config:
  replicas: 2
  deployment:
    window: nightly
resources:
  node-auth:
    file: deployment.yaml.tmpl
    image_tag: node-auth
    env:
      - name: PORT
        value: "8080"
  web:
    file: web.yaml.tmpl
    containers:
      app:
        image_tag: web-app
        primary: true
      proxy:
        image_tag: web-proxy
  legacy:
    disable: true
    file: legacy.yaml
`
	var def Definition
	require.NoError(t, yaml.Unmarshal([]byte(doc), &def))

	assert.Equal(t, "staging", def.Name)
	assert.Equal(t, "develop", def.Branch)
	assert.Equal(t, 2, def.Config["replicas"])

	// declaration order is preserved
	assert.Equal(t, []string{"node-auth", "web", "legacy"}, def.Resources.Names())

	auth, ok := def.Resources.Get("node-auth")
	require.True(t, ok)
	assert.Equal(t, "deployment.yaml.tmpl", auth.File)
	assert.Equal(t, "node-auth", auth.Inline.ImageTag)
	require.Len(t, auth.Inline.Env, 1)
	assert.Equal(t, EnvVar{Name: "PORT", Value: "8080"}, auth.Inline.Env[0])

	web, ok := def.Resources.Get("web")
	require.True(t, ok)
	assert.Equal(t, []string{"app", "proxy"}, web.Containers.Names())
	app, ok := web.Containers.Get("app")
	require.True(t, ok)
	require.NotNil(t, app.Primary)
	assert.True(t, *app.Primary)

	legacy, ok := def.Resources.Get("legacy")
	require.True(t, ok)
	assert.True(t, legacy.Disable)
}

func TestArtifactPassthroughFields(t *testing.T) {
	doc := `
image_tag: node-auth
resources:
  limits:
    memory: 256Mi
ports:
  - 8080
`
	var art Artifact
	require.NoError(t, yaml.Unmarshal([]byte(doc), &art))

	assert.Equal(t, "node-auth", art.ImageTag)
	assert.Contains(t, art.Fields, "resources")
	assert.Contains(t, art.Fields, "ports")
}

func TestResourcesRejectDuplicates(t *testing.T) {
	doc := `
resources:
  web: {file: web.yaml}
  web: {file: other.yaml}
`
	var def Definition
	err := yaml.Unmarshal([]byte(doc), &def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource")
}

func TestContainerListSynthetic(t *testing.T) {
	spec := &ResourceSpec{Inline: Artifact{ImageTag: "node-auth"}}

	list := spec.ContainerList("node-auth")
	require.Len(t, list, 1)
	assert.Equal(t, "node-auth", list[0].Name)
	assert.Equal(t, "node-auth", list[0].Artifact.ImageTag)
}

func TestResourceBranchFlowsToInline(t *testing.T) {
	doc := `
branch: hotfix
image_tag: node-auth
`
	var spec ResourceSpec
	require.NoError(t, yaml.Unmarshal([]byte(doc), &spec))
	assert.Equal(t, "hotfix", spec.Inline.Branch)
}

func TestAllowFailure(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name string
		def  Definition
		want bool
	}{
		{"production defaults to strict", Definition{Environment: "production"}, false},
		{"staging defaults to tolerant", Definition{Environment: "staging"}, true},
		{"explicit flag wins on production", Definition{Environment: "production", AllowFailureFlag: boolPtr(true)}, true},
		{"explicit flag wins on staging", Definition{Environment: "staging", AllowFailureFlag: boolPtr(false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.def.AllowFailure())
		})
	}
}
