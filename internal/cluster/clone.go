package cluster

// CloneMap creates a deep copy of a configuration map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = CloneValue(v)
	}
	return result
}

// CloneValue creates a deep copy of any configuration value.
func CloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneMap(v)
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = CloneValue(item)
		}
		return result
	case []string:
		result := make([]string, len(v))
		copy(result, v)
		return result
	default:
		// Primitive types are immutable, return as-is
		return value
	}
}

// Clone returns a deep copy of the artifact, so merge and resolution never
// touch the cluster definition's source of truth.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return &Artifact{}
	}
	out := &Artifact{
		Name:     a.Name,
		Image:    a.Image,
		ImageTag: a.ImageTag,
		Branch:   a.Branch,
	}
	if a.Primary != nil {
		p := *a.Primary
		out.Primary = &p
	}
	if a.Env != nil {
		out.Env = make([]EnvVar, len(a.Env))
		copy(out.Env, a.Env)
	}
	if a.Fields != nil {
		out.Fields = CloneMap(a.Fields)
	}
	return out
}
