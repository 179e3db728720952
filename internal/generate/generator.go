package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/events"
	"github.com/cameronsjo/stevedore/internal/plugin"
)

// Pipeline errors. All are fatal to the resource; the Generator decides
// resource-vs-cluster scope via the cluster's AllowFailure policy.
var (
	// ErrUnknownFileType indicates a resource file with an unhandled extension.
	ErrUnknownFileType = errors.New("unknown file type")

	// ErrNoPrimary indicates a multi-container resource without a primary
	// designation while commit-based resolution is active.
	ErrNoPrimary = errors.New("no primary set")

	// ErrImageNotFound indicates a missing image table entry.
	ErrImageNotFound = errors.New("image not found")

	// ErrCommitMismatch indicates resolved images that contradict the
	// expected commit.
	ErrCommitMismatch = errors.New("commit mismatch")
)

// Generator drives manifest generation for cluster definitions.
type Generator struct {
	defs    cluster.ImageDefs
	events  events.Emitter
	fetcher plugin.ConfigFetcher
	flags   plugin.FeatureFlags

	exportDir       string
	registryPrefix  string
	releaseLabel    string
	featureFlag     string
	appID           string
	serviceTemplate string

	commitID     string
	deployID     string
	fastRollback bool
	resource     string
	save         bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithFetcher sets the configuration-fetch capability.
func WithFetcher(f plugin.ConfigFetcher) Option {
	return func(g *Generator) { g.fetcher = f }
}

// WithFlags sets the feature-flag capability.
func WithFlags(f plugin.FeatureFlags) Option {
	return func(g *Generator) { g.flags = f }
}

// WithExportDir sets the root directory for generated manifests.
func WithExportDir(dir string) Option {
	return func(g *Generator) { g.exportDir = dir }
}

// WithRegistry sets the registry prefix and release label used when
// synthesizing commit-based image references.
func WithRegistry(prefix, releaseLabel string) Option {
	return func(g *Generator) {
		g.registryPrefix = prefix
		g.releaseLabel = releaseLabel
	}
}

// WithFeatureFlag sets the toggle name that gates commit-based resolution.
func WithFeatureFlag(name string) Option {
	return func(g *Generator) { g.featureFlag = name }
}

// WithAppID sets the application identifier attached to every metric.
func WithAppID(id string) Option {
	return func(g *Generator) { g.appID = id }
}

// WithServiceTemplate sets the shared service template path.
func WithServiceTemplate(path string) Option {
	return func(g *Generator) { g.serviceTemplate = path }
}

// WithCommit supplies the expected commit identifier.
func WithCommit(id string) Option {
	return func(g *Generator) { g.commitID = id }
}

// WithDeployment supplies the deployment id and fast-rollback flag merged
// into every local configuration.
func WithDeployment(id string, fastRollback bool) Option {
	return func(g *Generator) {
		g.deployID = id
		g.fastRollback = fastRollback
	}
}

// WithResource restricts processing to a single named resource.
func WithResource(name string) Option {
	return func(g *Generator) { g.resource = name }
}

// WithSave controls whether output is written. With save off the full
// pipeline still runs; only directory creation and writes are skipped.
func WithSave(save bool) Option {
	return func(g *Generator) { g.save = save }
}

// New creates a Generator over an image lookup table and an event sink.
// Capabilities default to their unset implementations.
func New(defs cluster.ImageDefs, emitter events.Emitter, opts ...Option) *Generator {
	g := &Generator{
		defs:           defs,
		events:         emitter,
		fetcher:        plugin.UnsetFetcher{},
		flags:          plugin.UnsetFlags{},
		exportDir:      "exports",
		registryPrefix: "registry.internal",
		releaseLabel:   "release",
		featureFlag:    "commit-sha-images",
		appID:          "stevedore",
		save:           true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Process generates manifests for every resource in a cluster definition.
// Resources run strictly in declaration order. Per-resource failures abort
// the cluster unless its AllowFailure policy says otherwise.
func (g *Generator) Process(ctx context.Context, def *cluster.Definition) error {
	outDir := filepath.Join(g.exportDir, def.Name)
	if g.save {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if def.Resources.Len() == 0 {
		g.events.Warn("cluster has no resources", events.Fields{"cluster": def.Name})
		return nil
	}

	names := def.Resources.Names()
	if g.resource != "" {
		if _, ok := def.Resources.Get(g.resource); !ok {
			g.events.Warn("resource not found in cluster", events.Fields{
				"cluster":  def.Name,
				"resource": g.resource,
			})
			return nil
		}
		names = []string{g.resource}
	}

	for _, name := range names {
		spec, _ := def.Resources.Get(name)
		if spec.Disable {
			g.events.Debug("resource disabled, skipping", events.Fields{
				"cluster":  def.Name,
				"resource": name,
			})
			continue
		}

		if err := g.processResource(ctx, def, outDir, name, spec); err != nil {
			if def.AllowFailure() {
				g.events.Warn("resource failed, continuing", events.Fields{
					"cluster":  def.Name,
					"resource": name,
					"error":    err.Error(),
				})
				continue
			}
			return fmt.Errorf("resource %s: %w", name, err)
		}
	}
	return nil
}

// processResource builds the local configuration for one resource and
// writes its output files.
func (g *Generator) processResource(ctx context.Context, def *cluster.Definition, outDir, name string, spec *cluster.ResourceSpec) error {
	lc, err := g.BuildLocalConfig(ctx, def, name, spec)
	if err != nil {
		return err
	}

	if spec.File != "" {
		src := spec.File
		if !filepath.IsAbs(src) {
			src = filepath.Join(def.Dir, src)
		}

		switch strings.ToLower(filepath.Ext(spec.File)) {
		case ".yaml", ".yml":
			content, err := os.ReadFile(src)
			if err != nil {
				return fmt.Errorf("read resource file: %w", err)
			}
			if err := g.write(filepath.Join(outDir, name+".yaml"), content); err != nil {
				return err
			}
		case ".tmpl", ".tpl":
			content, err := os.ReadFile(src)
			if err != nil {
				return fmt.Errorf("read resource template: %w", err)
			}
			rendered, err := Render(name, string(content), lc.Data())
			if err != nil {
				return err
			}
			if err := g.write(filepath.Join(outDir, name+".yaml"), []byte(rendered)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownFileType, spec.File)
		}
	}

	if len(spec.Svc) > 0 {
		if err := g.renderService(def, outDir, name, lc); err != nil {
			return err
		}
	}
	return nil
}

// renderService renders the shared service template for a resource.
func (g *Generator) renderService(def *cluster.Definition, outDir, name string, lc *cluster.LocalConfig) error {
	if g.serviceTemplate == "" {
		return errors.New("resource declares svc but no service template is configured")
	}

	path := g.serviceTemplate
	if !filepath.IsAbs(path) {
		path = filepath.Join(def.Dir, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read service template: %w", err)
	}

	rendered, err := Render(name+"-svc", string(content), lc.Data())
	if err != nil {
		return err
	}
	return g.write(filepath.Join(outDir, name+"-svc.yaml"), []byte(rendered))
}

// write persists rendered output, or records the skip during a dry run.
func (g *Generator) write(path string, content []byte) error {
	if !g.save {
		g.events.Debug("dry run, skipping write", events.Fields{"path": path})
		return nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	g.events.Info("wrote manifest", events.Fields{"path": path})
	return nil
}

// tags builds metric tags with the application and resource identifiers.
func (g *Generator) tags(resource string, extra ...string) map[string]string {
	tags := map[string]string{"app": g.appID}
	if resource != "" {
		tags["resource"] = resource
	}
	for i := 0; i+1 < len(extra); i += 2 {
		tags[extra[i]] = extra[i+1]
	}
	return tags
}
