// Package inventory populates the image lookup table from a Docker
// daemon's image inventory. Repository basenames become image tags and
// image tags become branches, so "registry.internal/node-auth:develop"
// yields imageDefs["node-auth"]["develop"].
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/cameronsjo/stevedore/internal/cluster"
)

// ImageAPI is the slice of the Docker client the inventory needs.
// The interface enables mocking without a running daemon.
type ImageAPI interface {
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	Close() error
}

// Client wraps the Docker SDK client for image inventory.
type Client struct {
	api ImageAPI
}

// NewClient creates a Docker-backed inventory client.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Client{api: cli}, nil
}

// NewClientWithAPI creates an inventory client with a custom API
// implementation. This is primarily used for testing with mocks.
func NewClientWithAPI(api ImageAPI) *Client {
	return &Client{api: api}
}

// Close closes the underlying client connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// Scan lists daemon images and builds the image lookup table.
// Untagged images and tags without a repository path are skipped.
func (c *Client) Scan(ctx context.Context) (cluster.ImageDefs, error) {
	images, err := c.api.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	defs := make(cluster.ImageDefs)
	for _, img := range images {
		for _, repoTag := range img.RepoTags {
			imageTag, branch, ok := splitRepoTag(repoTag)
			if !ok {
				continue
			}
			defs.Set(imageTag, branch, repoTag)
		}
	}
	return defs, nil
}

// splitRepoTag derives (image_tag, branch) from a repo:tag reference.
func splitRepoTag(repoTag string) (imageTag, branch string, ok bool) {
	if strings.Contains(repoTag, "<none>") {
		return "", "", false
	}

	idx := strings.LastIndex(repoTag, ":")
	if idx <= 0 || strings.Contains(repoTag[idx+1:], "/") {
		return "", "", false
	}
	repo, tag := repoTag[:idx], repoTag[idx+1:]

	if slash := strings.LastIndex(repo, "/"); slash >= 0 {
		repo = repo[slash+1:]
	}
	if repo == "" || tag == "" {
		return "", "", false
	}
	return repo, tag, true
}
