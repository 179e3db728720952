package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/events"
	"github.com/cameronsjo/stevedore/internal/plugin"
)

// newTestGenerator wires a Generator to a recorder sink.
func newTestGenerator(defs cluster.ImageDefs, opts ...Option) (*Generator, *events.Recorder) {
	rec := events.NewRecorder()
	return New(defs, rec, opts...), rec
}

func testDefs() cluster.ImageDefs {
	defs := make(cluster.ImageDefs)
	defs.Set("node-auth", "develop", "X")
	defs.Set("web-app", "develop", "registry.internal/web-app:develop")
	defs.Set("web-proxy", "develop", "registry.internal/web-proxy:develop")
	return defs
}

func testDefinition() *cluster.Definition {
	return &cluster.Definition{
		Name:        "staging",
		Environment: "staging",
		Branch:      "develop",
		Config:      map[string]any{"replicas": 2},
	}
}

func TestBuildLocalConfigBranchDefault(t *testing.T) {
	g, _ := newTestGenerator(testDefs())
	spec := &cluster.ResourceSpec{Inline: cluster.Artifact{ImageTag: "node-auth"}}

	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)

	assert.Equal(t, "node-auth", lc.Name)
	assert.Equal(t, "develop", lc.Branch)

	art, ok := lc.Container("node-auth")
	require.True(t, ok)
	assert.Equal(t, "X", art.Image)
}

func TestBuildLocalConfigResourceBranchOverride(t *testing.T) {
	defs := make(cluster.ImageDefs)
	defs.Set("node-auth", "hotfix", "Y")
	g, _ := newTestGenerator(defs)

	spec := &cluster.ResourceSpec{
		Branch: "hotfix",
		Inline: cluster.Artifact{ImageTag: "node-auth", Branch: "hotfix"},
	}

	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)
	assert.Equal(t, "hotfix", lc.Branch)

	art, _ := lc.Container("node-auth")
	assert.Equal(t, "Y", art.Image)
}

func TestBuildLocalConfigFetchedPrecedence(t *testing.T) {
	fetcher := &plugin.StaticFetcher{
		Fields: map[string]any{"team": "platform", "image_tag": "web-app"},
	}
	g, _ := newTestGenerator(testDefs(), WithFetcher(fetcher))

	spec := &cluster.ResourceSpec{
		Inline: cluster.Artifact{
			ImageTag: "node-auth",
			Fields:   map[string]any{"team": "legacy", "tier": "backend"},
		},
	}

	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "web", spec)
	require.NoError(t, err)

	art, _ := lc.Container("web")
	// fetched wins on collision, artifact-only fields survive
	assert.Equal(t, "platform", art.Fields["team"])
	assert.Equal(t, "backend", art.Fields["tier"])
	// typed fields override too: lookup followed the fetched image_tag
	assert.Equal(t, "registry.internal/web-app:develop", art.Image)
}

func TestBuildLocalConfigEnvMerge(t *testing.T) {
	fetcher := &plugin.StaticFetcher{
		Env: []cluster.EnvVar{
			{Name: "DB_URL", Value: "postgres://db.internal"},
			{Name: "DB_SECRET", Value: "s3cret"},
		},
	}
	g, _ := newTestGenerator(testDefs(), WithFetcher(fetcher))

	spec := &cluster.ResourceSpec{
		Inline: cluster.Artifact{
			ImageTag: "node-auth",
			Env: []cluster.EnvVar{
				{Name: "DB_URL", Value: "overridden-below"},
				{Name: "DATABASE", Value: "${DB_SECRET}"},
				{Name: "PORT", Value: "8080"},
			},
		},
	}

	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)

	art, _ := lc.Container("node-auth")
	assert.Equal(t, []cluster.EnvVar{
		{Name: "DB_URL", Value: "postgres://db.internal"}, // fetched same-name wins
		{Name: "DATABASE", Value: "s3cret"},               // placeholder expanded
		{Name: "PORT", Value: "8080"},                     // declared entry preserved
		{Name: "DB_SECRET", Value: "s3cret"},              // new fetched name appended
	}, art.Env)
}

func TestBuildLocalConfigFetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("config service down")
	g, _ := newTestGenerator(testDefs(), WithFetcher(&plugin.StaticFetcher{Err: fetchErr}))

	spec := &cluster.ResourceSpec{Inline: cluster.Artifact{ImageTag: "node-auth"}}
	_, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.ErrorIs(t, err, fetchErr)
}

func TestBuildLocalConfigDeployment(t *testing.T) {
	g, _ := newTestGenerator(testDefs(), WithDeployment("deploy-1", true))

	spec := &cluster.ResourceSpec{Inline: cluster.Artifact{ImageTag: "node-auth"}}
	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)

	dep := lc.Base["deployment"].(map[string]any)
	assert.Equal(t, "deploy-1", dep["id"])
	assert.Equal(t, true, dep["fastRollback"])
}

func TestBuildLocalConfigSvcCopied(t *testing.T) {
	g, _ := newTestGenerator(testDefs())

	spec := &cluster.ResourceSpec{
		Svc:    map[string]any{"port": 8080},
		Inline: cluster.Artifact{ImageTag: "node-auth"},
	}
	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": 8080}, lc.Svc)

	// the copy is detached from the definition
	lc.Svc["port"] = 9090
	assert.Equal(t, 8080, spec.Svc["port"])
}

func TestBuildLocalConfigIdempotent(t *testing.T) {
	fetcher := &plugin.StaticFetcher{
		Env: []cluster.EnvVar{{Name: "DB_URL", Value: "postgres://db.internal"}},
	}
	g, _ := newTestGenerator(testDefs(), WithFetcher(fetcher))

	spec := &cluster.ResourceSpec{
		Svc:    map[string]any{"port": 8080},
		Inline: cluster.Artifact{ImageTag: "node-auth"},
	}

	first, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)
	second, err := g.BuildLocalConfig(context.Background(), testDefinition(), "node-auth", spec)
	require.NoError(t, err)

	assert.Equal(t, first.Data(), second.Data())
	assert.Equal(t, 2, fetcher.Calls)
}

func TestBuildLocalConfigMultiContainerOrder(t *testing.T) {
	g, _ := newTestGenerator(testDefs())

	spec := &cluster.ResourceSpec{}
	spec.Containers.Add("app", &cluster.Artifact{ImageTag: "web-app"})
	spec.Containers.Add("proxy", &cluster.Artifact{ImageTag: "web-proxy"})

	lc, err := g.BuildLocalConfig(context.Background(), testDefinition(), "web", spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "proxy"}, lc.ContainerNames())
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name     string
		declared []cluster.EnvVar
		fetched  []cluster.EnvVar
		want     []cluster.EnvVar
	}{
		{
			name:     "no fetched returns declared",
			declared: []cluster.EnvVar{{Name: "A", Value: "1"}},
			want:     []cluster.EnvVar{{Name: "A", Value: "1"}},
		},
		{
			name:    "fetched only",
			fetched: []cluster.EnvVar{{Name: "A", Value: "1"}},
			want:    []cluster.EnvVar{{Name: "A", Value: "1"}},
		},
		{
			name:     "placeholder without match stays literal",
			declared: []cluster.EnvVar{{Name: "A", Value: "${MISSING}"}},
			fetched:  []cluster.EnvVar{{Name: "B", Value: "2"}},
			want: []cluster.EnvVar{
				{Name: "A", Value: "${MISSING}"},
				{Name: "B", Value: "2"},
			},
		},
		{
			name:     "partial placeholder is not an indirection",
			declared: []cluster.EnvVar{{Name: "A", Value: "prefix-${B}"}},
			fetched:  []cluster.EnvVar{{Name: "B", Value: "2"}},
			want: []cluster.EnvVar{
				{Name: "A", Value: "prefix-${B}"},
				{Name: "B", Value: "2"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeEnv(tt.declared, tt.fetched))
		})
	}
}
