package generate

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/plugin"
)

// placeholderPattern matches env values that are pure indirections to an
// externally loaded variable, e.g. "${DB_PASSWORD}".
var placeholderPattern = regexp.MustCompile(`^\$\{(\w+)\}$`)

// BuildLocalConfig produces the local configuration for one resource:
// a deep clone of the cluster defaults with the resource name and branch,
// the deployment info when a deploy id was supplied, one merged and
// resolved artifact per container, and the service descriptor.
//
// Merge precedence is fetched > artifact > cluster default, except env:
// artifact-declared entries are preserved unless a fetched entry has the
// same name, and placeholder values expand from the fetched set.
func (g *Generator) BuildLocalConfig(ctx context.Context, def *cluster.Definition, name string, spec *cluster.ResourceSpec) (*cluster.LocalConfig, error) {
	lc := cluster.NewLocalConfig(def.Config)
	lc.Name = name
	lc.Branch = spec.Branch
	if lc.Branch == "" {
		lc.Branch = def.Branch
	}
	if g.deployID != "" {
		lc.MergeDeployment(g.deployID, g.fastRollback)
	}

	containers := spec.ContainerList(name)
	for _, c := range containers {
		art := c.Artifact.Clone()
		art.Name = c.Name

		fetched, err := g.fetcher.Fetch(ctx, art, def)
		switch {
		case errors.Is(err, plugin.ErrNotConfigured):
			// merge step skipped
		case err != nil:
			return nil, fmt.Errorf("fetch config for container %s: %w", c.Name, err)
		default:
			applyFetched(art, fetched)
		}

		if err := g.resolveImage(ctx, lc, art, len(containers)); err != nil {
			return nil, err
		}
		lc.SetContainer(c.Name, art)
	}

	if err := g.verifyCommit(lc); err != nil {
		return nil, err
	}

	if len(spec.Svc) > 0 {
		lc.Svc = cluster.CloneMap(spec.Svc)
	}
	return lc, nil
}

// applyFetched merges a fetch result onto an artifact. Fetched fields win
// on key collision; env goes through mergeEnv.
func applyFetched(art *cluster.Artifact, fetched *plugin.FetchedConfig) {
	for key, value := range fetched.Fields {
		if s, ok := value.(string); ok {
			switch key {
			case "image":
				art.Image = s
				continue
			case "image_tag":
				art.ImageTag = s
				continue
			case "branch":
				art.Branch = s
				continue
			}
		}
		if art.Fields == nil {
			art.Fields = make(map[string]any)
		}
		art.Fields[key] = cluster.CloneValue(value)
	}
	art.Env = mergeEnv(art.Env, fetched.Env)
}

// mergeEnv combines declared and fetched env entries. Declared entries come
// first in declaration order; a fetched value with the same name overrides,
// and "${NAME}" placeholders resolve against the fetched set. Fetched
// entries with new names append afterwards.
func mergeEnv(declared, fetched []cluster.EnvVar) []cluster.EnvVar {
	if len(fetched) == 0 {
		return declared
	}

	byName := make(map[string]string, len(fetched))
	for _, f := range fetched {
		byName[f.Name] = f.Value
	}

	out := make([]cluster.EnvVar, 0, len(declared)+len(fetched))
	seen := make(map[string]bool, len(declared))
	for _, d := range declared {
		value := d.Value
		if v, ok := byName[d.Name]; ok {
			value = v
		} else if m := placeholderPattern.FindStringSubmatch(d.Value); m != nil {
			if v, ok := byName[m[1]]; ok {
				value = v
			}
		}
		out = append(out, cluster.EnvVar{Name: d.Name, Value: value})
		seen[d.Name] = true
	}
	for _, f := range fetched {
		if !seen[f.Name] {
			out = append(out, f)
		}
	}
	return out
}
