package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/events"
	"github.com/cameronsjo/stevedore/internal/plugin"
)

// resolveImage assigns the image reference for a single container. The
// commit strategy applies when the feature toggle is on and a commit id
// was supplied; everything else degrades to the branch-default lookup with
// a diagnostic on every fallback path.
func (g *Generator) resolveImage(ctx context.Context, lc *cluster.LocalConfig, art *cluster.Artifact, containerCount int) error {
	if art.Image != "" {
		g.events.Warn("image already defined", events.Fields{
			"resource":  lc.Name,
			"container": art.Name,
			"image":     art.Image,
		})
		return nil
	}

	if g.commitStrategyEnabled(ctx, lc) {
		done, err := g.resolveCommitImage(lc, art, containerCount)
		if err != nil || done {
			return err
		}
	}
	return g.resolveBranchImage(lc, art)
}

// commitStrategyEnabled evaluates the gating feature toggle. An unset flag
// client and evaluation failures both mean "disabled", each with its own
// diagnostic.
func (g *Generator) commitStrategyEnabled(ctx context.Context, lc *cluster.LocalConfig) bool {
	enabled, err := g.flags.Toggle(ctx, g.featureFlag)
	switch {
	case errors.Is(err, plugin.ErrNotConfigured):
		g.events.Debug("feature flag client not configured, using branch default", events.Fields{
			"resource": lc.Name,
			"feature":  g.featureFlag,
		})
		return false
	case err != nil:
		g.events.Warn("feature flag evaluation failed, using branch default", events.Fields{
			"resource": lc.Name,
			"feature":  g.featureFlag,
			"error":    err.Error(),
		})
		g.events.Metric(events.Metric{
			Kind: "count",
			Name: "feature_flag_error",
			Text: err.Error(),
			Tags: g.tags(lc.Name, "feature", g.featureFlag),
		})
		return false
	}
	return enabled
}

// resolveCommitImage synthesizes a commit-based image reference. It returns
// done=false when the branch-default strategy should take over instead.
func (g *Generator) resolveCommitImage(lc *cluster.LocalConfig, art *cluster.Artifact, containerCount int) (bool, error) {
	if g.commitID == "" {
		g.events.Warn("commit strategy selected but no commit id supplied", events.Fields{
			"resource":  lc.Name,
			"container": art.Name,
		})
		g.events.Metric(events.Metric{
			Kind: "count",
			Name: "commit_id_missing",
			Tags: g.tags(lc.Name, "feature", g.featureFlag),
		})
		return false, nil
	}

	if containerCount > 1 {
		if art.Primary == nil {
			return false, fmt.Errorf("%w for resource %q", ErrNoPrimary, lc.Name)
		}
		if !*art.Primary {
			// secondary containers keep branch-based images
			return false, nil
		}
	}

	if art.ImageTag == "" {
		return false, nil
	}

	art.Image = fmt.Sprintf("%s/%s:%s-%s", g.registryPrefix, art.ImageTag, g.releaseLabel, g.commitID)
	g.events.Info("resolved image from commit", events.Fields{
		"resource":  lc.Name,
		"container": art.Name,
		"image":     art.Image,
	})
	return true, nil
}

// resolveBranchImage looks the image up by image_tag and effective branch.
// A missing image_tag is advisory; a missing table entry is fatal.
func (g *Generator) resolveBranchImage(lc *cluster.LocalConfig, art *cluster.Artifact) error {
	if art.ImageTag == "" {
		g.events.Warn("no image_tag found, leaving image unset", events.Fields{
			"resource":  lc.Name,
			"container": art.Name,
		})
		g.events.Metric(events.Metric{
			Kind: "count",
			Name: "image_tag_missing",
			Tags: g.tags(lc.Name),
		})
		return nil
	}

	branch := art.Branch
	if branch == "" {
		branch = lc.Branch
	}

	ref, ok := g.defs.Lookup(art.ImageTag, branch)
	if !ok {
		return fmt.Errorf("%w: image_tag %q branch %q (resource %q)", ErrImageNotFound, art.ImageTag, branch, lc.Name)
	}
	art.Image = ref.Image
	return nil
}
