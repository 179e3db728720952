package generate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/events"
)

// shaToken extracts the trailing commit token from an image reference
// following the ":<label>-<sha>" convention.
var shaToken = regexp.MustCompile(`:[^:/]*-([0-9a-fA-F]+)$`)

// VerifyCommit cross-checks resolved images against an expected commit.
// With no commit id it is a no-op. When at least one image carries an
// extractable token and none of them match, it fails naming the mismatched
// tokens. Zero extractable tokens is vacuously valid.
func VerifyCommit(lc *cluster.LocalConfig, commitID string) error {
	if commitID == "" {
		return nil
	}

	var mismatched []string
	matched := false
	for _, name := range lc.ContainerNames() {
		art, _ := lc.Container(name)
		if art.Image == "" {
			continue
		}
		m := shaToken.FindStringSubmatch(art.Image)
		if m == nil {
			continue
		}
		if strings.EqualFold(m[1], commitID) {
			matched = true
		} else {
			mismatched = append(mismatched, m[1])
		}
	}

	if !matched && len(mismatched) > 0 {
		return fmt.Errorf("%w: resource %q images carry [%s], expected %s",
			ErrCommitMismatch, lc.Name, strings.Join(mismatched, ", "), commitID)
	}
	return nil
}

// verifyCommit runs verification and emits the confirmation event.
func (g *Generator) verifyCommit(lc *cluster.LocalConfig) error {
	if g.commitID == "" {
		return nil
	}
	if err := VerifyCommit(lc, g.commitID); err != nil {
		return err
	}
	g.events.Info("commit verified", events.Fields{
		"resource": lc.Name,
		"commit":   g.commitID,
	})
	return nil
}
