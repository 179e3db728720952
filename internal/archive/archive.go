// Package archive keeps copies of previously generated cluster manifests
// so a bad generation can be compared against or rolled back by hand.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cameronsjo/stevedore/internal/fileutil"
)

const (
	// Prefix starts every archive directory name.
	Prefix = "archive-"

	// DateFormat is the timestamp format used in archive names. Nanosecond
	// precision prevents same-second collisions.
	DateFormat = "20060102-150405.000000000"

	// MaxArchives is the number of archives retained per cluster.
	MaxArchives = 10
)

// Info describes one kept archive.
type Info struct {
	Cluster string
	Name    string
	Path    string
	Created time.Time
}

// dir returns the archive directory for a cluster.
func dir(exportDir, cluster string) string {
	return filepath.Join(exportDir, ".stevedore", "archive", cluster)
}

// Keep archives the current manifests of a cluster before they are
// regenerated. It returns the archive name, or an empty string when the
// cluster has no manifests yet.
func Keep(exportDir, cluster string) (string, error) {
	src := filepath.Join(exportDir, cluster)
	if !hasContent(src) {
		return "", nil
	}

	name := Prefix + time.Now().Format(DateFormat)
	dst := filepath.Join(dir(exportDir, cluster), name)
	if err := os.MkdirAll(dst, 0755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	if err := fileutil.CopyDir(src, dst); err != nil {
		os.RemoveAll(dst)
		return "", fmt.Errorf("archive manifests for %s: %w", cluster, err)
	}

	if err := Prune(exportDir, cluster); err != nil {
		return "", fmt.Errorf("prune archives for %s: %w", cluster, err)
	}
	return name, nil
}

// List returns a cluster's archives, newest first.
func List(exportDir, cluster string) ([]Info, error) {
	entries, err := os.ReadDir(dir(exportDir, cluster))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive directory: %w", err)
	}

	var archives []Info
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}
		created, err := time.Parse(DateFormat, strings.TrimPrefix(entry.Name(), Prefix))
		if err != nil {
			continue
		}
		archives = append(archives, Info{
			Cluster: cluster,
			Name:    entry.Name(),
			Path:    filepath.Join(dir(exportDir, cluster), entry.Name()),
			Created: created,
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Created.After(archives[j].Created)
	})
	return archives, nil
}

// Prune removes a cluster's oldest archives beyond MaxArchives.
func Prune(exportDir, cluster string) error {
	archives, err := List(exportDir, cluster)
	if err != nil {
		return err
	}
	for _, old := range archives[min(len(archives), MaxArchives):] {
		if err := os.RemoveAll(old.Path); err != nil {
			return fmt.Errorf("remove archive %s: %w", old.Name, err)
		}
	}
	return nil
}

// Clusters returns the names of clusters that have at least one archive.
func Clusters(exportDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(exportDir, ".stevedore", "archive"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// hasContent reports whether path is a directory with at least one entry.
func hasContent(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}
