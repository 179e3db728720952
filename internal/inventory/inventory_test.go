package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAPI implements ImageAPI with function fields.
type mockAPI struct {
	imageList func(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	closed    bool
}

func (m *mockAPI) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	return m.imageList(ctx, options)
}

func (m *mockAPI) Close() error {
	m.closed = true
	return nil
}

func TestScan(t *testing.T) {
	api := &mockAPI{
		imageList: func(context.Context, image.ListOptions) ([]image.Summary, error) {
			return []image.Summary{
				{RepoTags: []string{
					"registry.internal/node-auth:develop",
					"registry.internal/node-auth:release-abc2",
				}},
				{RepoTags: []string{"nginx:latest"}},
				{RepoTags: []string{"<none>:<none>"}},
				{RepoTags: nil},
			}, nil
		},
	}

	c := NewClientWithAPI(api)
	defs, err := c.Scan(context.Background())
	require.NoError(t, err)

	ref, ok := defs.Lookup("node-auth", "develop")
	require.True(t, ok)
	assert.Equal(t, "registry.internal/node-auth:develop", ref.Image)

	ref, ok = defs.Lookup("node-auth", "release-abc2")
	require.True(t, ok)
	assert.Equal(t, "registry.internal/node-auth:release-abc2", ref.Image)

	_, ok = defs.Lookup("nginx", "latest")
	assert.True(t, ok)

	require.NoError(t, c.Close())
	assert.True(t, api.closed)
}

func TestScanListError(t *testing.T) {
	listErr := errors.New("daemon unreachable")
	api := &mockAPI{
		imageList: func(context.Context, image.ListOptions) ([]image.Summary, error) {
			return nil, listErr
		},
	}

	_, err := NewClientWithAPI(api).Scan(context.Background())
	require.ErrorIs(t, err, listErr)
}

func TestSplitRepoTag(t *testing.T) {
	tests := []struct {
		repoTag  string
		imageTag string
		branch   string
		ok       bool
	}{
		{"registry.internal/node-auth:develop", "node-auth", "develop", true},
		{"registry.internal/team/web-app:release-abc2", "web-app", "release-abc2", true},
		{"nginx:latest", "nginx", "latest", true},
		{"<none>:<none>", "", "", false},
		{"no-tag-here", "", "", false},
		{"localhost:5000/app", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.repoTag, func(t *testing.T) {
			imageTag, branch, ok := splitRepoTag(tt.repoTag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.imageTag, imageTag)
			assert.Equal(t, tt.branch, branch)
		})
	}
}
