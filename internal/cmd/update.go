package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/ui"
	"github.com/cameronsjo/stevedore/internal/update"
)

// updateCmd represents the update command.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update stevedore to the latest release",
	Run:   runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	release, found, err := update.CheckForUpdate(version)
	if err != nil {
		ui.Fatal("check for update: %v", err)
	}
	if !found {
		ui.Success("stevedore %s is up to date", version)
		return
	}

	ui.Info("Updating to %s (published %s)", release.Version, release.PublishedAt)
	if _, err := update.Update(version); err != nil {
		ui.Fatal("update: %v", err)
	}
	ui.Success("Updated to %s", release.Version)
}
