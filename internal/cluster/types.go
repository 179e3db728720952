// Package cluster defines the deployment data model: cluster definitions,
// resource specs, container artifacts, the image lookup table, and the
// per-resource local configuration built during generation.
package cluster

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EnvVar is one environment entry on a container.
type EnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Artifact is a container-level configuration record. Known fields are
// typed; everything else passes through to the template context untouched.
type Artifact struct {
	// Name is the container name, set during merge.
	Name string

	// Image is the final resolved image reference. When set in the
	// definition, resolution leaves it alone.
	Image string

	// ImageTag is the logical key looked up in the image table.
	ImageTag string

	// Branch overrides the resource branch for image lookup.
	Branch string

	// Primary marks the container whose image follows the commit when a
	// resource has more than one container. Nil means undeclared.
	Primary *bool

	// Env is the declared environment, in declaration order.
	Env []EnvVar

	// Fields holds passthrough configuration not modeled above.
	Fields map[string]any
}

// artifactKeys are the YAML keys decoded into typed Artifact fields.
// Everything else lands in Fields.
func (a *Artifact) decodeEntry(key string, value *yaml.Node) error {
	switch key {
	case "image":
		return value.Decode(&a.Image)
	case "image_tag":
		return value.Decode(&a.ImageTag)
	case "branch":
		return value.Decode(&a.Branch)
	case "primary":
		return value.Decode(&a.Primary)
	case "env":
		return value.Decode(&a.Env)
	default:
		var v any
		if err := value.Decode(&v); err != nil {
			return err
		}
		if a.Fields == nil {
			a.Fields = make(map[string]any)
		}
		a.Fields[key] = v
		return nil
	}
}

// UnmarshalYAML decodes an artifact mapping, splitting typed fields from
// passthrough fields.
func (a *Artifact) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("artifact must be a mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if err := a.decodeEntry(key, node.Content[i+1]); err != nil {
			return fmt.Errorf("artifact field %q: %w", key, err)
		}
	}
	return nil
}

// Containers is an ordered container-name → artifact map. YAML declaration
// order is preserved so generation is deterministic.
type Containers struct {
	names []string
	byName map[string]*Artifact
}

// UnmarshalYAML decodes a mapping of container name to artifact.
func (c *Containers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("containers must be a mapping, got %s", nodeKind(node))
	}
	c.byName = make(map[string]*Artifact)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		art := &Artifact{}
		if err := node.Content[i+1].Decode(art); err != nil {
			return fmt.Errorf("container %q: %w", name, err)
		}
		if _, dup := c.byName[name]; dup {
			return fmt.Errorf("duplicate container %q", name)
		}
		c.names = append(c.names, name)
		c.byName[name] = art
	}
	return nil
}

// Names returns container names in declaration order.
func (c *Containers) Names() []string {
	return append([]string(nil), c.names...)
}

// Get returns the artifact for name.
func (c *Containers) Get(name string) (*Artifact, bool) {
	a, ok := c.byName[name]
	return a, ok
}

// Len returns the number of declared containers.
func (c *Containers) Len() int {
	return len(c.names)
}

// Add appends a named artifact; used by tests and the inventory importer.
func (c *Containers) Add(name string, a *Artifact) {
	if c.byName == nil {
		c.byName = make(map[string]*Artifact)
	}
	if _, dup := c.byName[name]; !dup {
		c.names = append(c.names, name)
	}
	c.byName[name] = a
}

// ResourceSpec describes one deployable unit within a cluster.
type ResourceSpec struct {
	// File is the resource's manifest file: .yaml/.yml files are copied
	// verbatim, template extensions are rendered.
	File string

	// Svc is the optional service descriptor rendered through the shared
	// service template.
	Svc map[string]any

	// Disable skips the resource entirely.
	Disable bool

	// Branch overrides the cluster default branch.
	Branch string

	// Containers is the optional named-container map. When absent the
	// resource itself acts as a single synthetic container.
	Containers Containers

	// Inline carries the artifact fields declared directly on the
	// resource, used for the synthetic single-container form.
	Inline Artifact
}

// UnmarshalYAML decodes a resource spec: resource-level keys are typed and
// everything else is treated as inline artifact configuration.
func (r *ResourceSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("resource must be a mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		var err error
		switch key {
		case "file":
			err = value.Decode(&r.File)
		case "svc":
			err = value.Decode(&r.Svc)
		case "disable":
			err = value.Decode(&r.Disable)
		case "branch":
			err = value.Decode(&r.Branch)
		case "containers":
			err = value.Decode(&r.Containers)
		default:
			err = r.Inline.decodeEntry(key, value)
		}
		if err != nil {
			return fmt.Errorf("resource field %q: %w", key, err)
		}
	}
	// The inline artifact shares the resource branch unless it sets its own.
	if r.Inline.Branch == "" {
		r.Inline.Branch = r.Branch
	}
	return nil
}

// NamedArtifact pairs a container name with its declared artifact.
type NamedArtifact struct {
	Name     string
	Artifact *Artifact
}

// ContainerList returns the containers to process for this resource, in
// declaration order. A resource without a containers map yields a single
// synthetic container named after the resource.
func (r *ResourceSpec) ContainerList(resourceName string) []NamedArtifact {
	if r.Containers.Len() == 0 {
		return []NamedArtifact{{Name: resourceName, Artifact: &r.Inline}}
	}
	list := make([]NamedArtifact, 0, r.Containers.Len())
	for _, name := range r.Containers.Names() {
		a, _ := r.Containers.Get(name)
		list = append(list, NamedArtifact{Name: name, Artifact: a})
	}
	return list
}

// Resources is an ordered resource-name → spec map.
type Resources struct {
	names  []string
	byName map[string]*ResourceSpec
}

// UnmarshalYAML decodes the resource mapping, preserving declaration order
// and rejecting duplicate names.
func (r *Resources) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("resources must be a mapping, got %s", nodeKind(node))
	}
	r.byName = make(map[string]*ResourceSpec)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		spec := &ResourceSpec{}
		if err := node.Content[i+1].Decode(spec); err != nil {
			return fmt.Errorf("resource %q: %w", name, err)
		}
		if _, dup := r.byName[name]; dup {
			return fmt.Errorf("duplicate resource %q", name)
		}
		r.names = append(r.names, name)
		r.byName[name] = spec
	}
	return nil
}

// Names returns resource names in declaration order.
func (r *Resources) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the spec for name.
func (r *Resources) Get(name string) (*ResourceSpec, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Len returns the number of resources.
func (r *Resources) Len() int {
	return len(r.names)
}

// Add appends a named resource spec; used by tests.
func (r *Resources) Add(name string, spec *ResourceSpec) {
	if r.byName == nil {
		r.byName = make(map[string]*ResourceSpec)
	}
	if _, dup := r.byName[name]; !dup {
		r.names = append(r.names, name)
	}
	r.byName[name] = spec
}

// Definition is an immutable view over one cluster: metadata, the default
// configuration record, and the resource set.
type Definition struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Environment string `yaml:"environment"`
	Namespace   string `yaml:"namespace"`
	Server      string `yaml:"server"`

	// Branch is the cluster default branch for image lookup.
	Branch string `yaml:"branch"`

	// AllowFailureFlag, when set, overrides the environment-derived
	// failure policy.
	AllowFailureFlag *bool `yaml:"allowFailure"`

	// Config is the default configuration record cloned into every
	// resource's local configuration.
	Config map[string]any `yaml:"config"`

	// Resources maps resource name to spec, in declaration order.
	Resources Resources `yaml:"resources"`

	// Dir is the directory the definition was loaded from; resource file
	// paths resolve relative to it.
	Dir string `yaml:"-"`
}

// AllowFailure reports whether a per-resource failure is logged and skipped
// rather than aborting the whole cluster. Explicit flag wins; otherwise
// anything but production tolerates failures.
func (d *Definition) AllowFailure() bool {
	if d.AllowFailureFlag != nil {
		return *d.AllowFailureFlag
	}
	return d.Environment != "production"
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}
