package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/inventory"
	"github.com/cameronsjo/stevedore/internal/lock"
	"github.com/cameronsjo/stevedore/internal/ui"
)

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the image table from the docker daemon",
	Long: `Rebuild clusters/images.yaml from the docker daemon's image inventory.

Repository basenames become image tags and image tags become branches:
registry.internal/node-auth:develop populates the table entry used by a
resource with image_tag "node-auth" on branch "develop".`,
	Run: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	project, err := config.Load()
	if err != nil {
		ui.Fatal("%v", err)
	}

	client, err := inventory.NewClient()
	if err != nil {
		ui.Fatal("%v", err)
	}
	defer client.Close()

	defs, err := client.Scan(context.Background())
	if err != nil {
		ui.Fatal("%v", err)
	}

	err = lock.With(project.Root, "sync", func() error {
		return cluster.SaveImageDefs(defs, project.ImagesFile())
	})
	if err != nil {
		ui.Fatal("%v", err)
	}
	ui.Success("Wrote %s (%d image tags)", project.ImagesFile(), len(defs))
}
