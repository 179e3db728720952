package cluster

// LocalConfig is the per-resource working copy: a deep clone of the cluster
// default configuration plus the resource's name, branch, deployment info,
// resolved containers, and optional service descriptor. It is created fresh
// per resource and never shared across resources.
type LocalConfig struct {
	Name   string
	Branch string

	// Base is the cloned cluster default configuration. Deployment info
	// merges into Base["deployment"] so sibling fields declared in the
	// cluster defaults survive.
	Base map[string]any

	// Svc is the optional service descriptor copied from the resource.
	Svc map[string]any

	containers map[string]*Artifact
	order      []string
}

// NewLocalConfig starts a local configuration from a deep clone of the
// cluster default configuration.
func NewLocalConfig(defaults map[string]any) *LocalConfig {
	return &LocalConfig{
		Base:       CloneMap(defaults),
		containers: make(map[string]*Artifact),
	}
}

// MergeDeployment sets the deployment id and fastRollback flag, creating
// the deployment substructure if absent and preserving its other fields.
func (lc *LocalConfig) MergeDeployment(id string, fastRollback bool) {
	dep, ok := lc.Base["deployment"].(map[string]any)
	if !ok {
		dep = make(map[string]any)
		lc.Base["deployment"] = dep
	}
	dep["id"] = id
	dep["fastRollback"] = fastRollback
}

// SetContainer stores a finished artifact under its container name,
// preserving insertion order.
func (lc *LocalConfig) SetContainer(name string, a *Artifact) {
	if _, dup := lc.containers[name]; !dup {
		lc.order = append(lc.order, name)
	}
	lc.containers[name] = a
}

// Container returns the artifact stored under name.
func (lc *LocalConfig) Container(name string) (*Artifact, bool) {
	a, ok := lc.containers[name]
	return a, ok
}

// ContainerNames returns container names in insertion order.
func (lc *LocalConfig) ContainerNames() []string {
	return append([]string(nil), lc.order...)
}

// Data flattens the local configuration into the template context: the
// cloned defaults, then name/branch/svc, then one entry per container keyed
// by container name. Container entries win over same-named default keys.
func (lc *LocalConfig) Data() map[string]any {
	data := CloneMap(lc.Base)
	data["name"] = lc.Name
	data["branch"] = lc.Branch
	if lc.Svc != nil {
		data["svc"] = CloneMap(lc.Svc)
	}
	for _, name := range lc.order {
		data[name] = lc.containers[name].data()
	}
	return data
}

// data renders an artifact as a template context map.
func (a *Artifact) data() map[string]any {
	m := CloneMap(a.Fields)
	m["name"] = a.Name
	if a.Image != "" {
		m["image"] = a.Image
	}
	if a.ImageTag != "" {
		m["image_tag"] = a.ImageTag
	}
	if a.Branch != "" {
		m["branch"] = a.Branch
	}
	if a.Primary != nil {
		m["primary"] = *a.Primary
	}
	if len(a.Env) > 0 {
		env := make([]any, 0, len(a.Env))
		for _, e := range a.Env {
			env = append(env, map[string]any{"name": e.Name, "value": e.Value})
		}
		m["env"] = env
	}
	return m
}
