package cluster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ImageRef is one entry in the image lookup table.
type ImageRef struct {
	Image string `yaml:"image"`
}

// ImageDefs maps image_tag → branch → image reference. The table is
// populated by the inventory sync and read-only during generation.
type ImageDefs map[string]map[string]ImageRef

// Lookup returns the image reference for an image_tag on a branch.
func (d ImageDefs) Lookup(imageTag, branch string) (ImageRef, bool) {
	branches, ok := d[imageTag]
	if !ok {
		return ImageRef{}, false
	}
	ref, ok := branches[branch]
	return ref, ok
}

// Set records an image reference; used by the inventory sync.
func (d ImageDefs) Set(imageTag, branch, image string) {
	branches, ok := d[imageTag]
	if !ok {
		branches = make(map[string]ImageRef)
		d[imageTag] = branches
	}
	branches[branch] = ImageRef{Image: image}
}

// LoadImageDefs reads an image table from a YAML file.
func LoadImageDefs(path string) (ImageDefs, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image defs: %w", err)
	}

	var defs ImageDefs
	if err := yaml.Unmarshal(content, &defs); err != nil {
		return nil, fmt.Errorf("parse image defs: %w", err)
	}
	if defs == nil {
		defs = make(ImageDefs)
	}
	return defs, nil
}

// SaveImageDefs writes the image table to a YAML file.
func SaveImageDefs(defs ImageDefs, path string) error {
	data, err := yaml.Marshal(defs)
	if err != nil {
		return fmt.Errorf("marshal image defs: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write image defs: %w", err)
	}
	return nil
}
