package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/archive"
	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/ui"
)

// archivesCmd represents the archives command.
var archivesCmd = &cobra.Command{
	Use:   "archives [cluster]",
	Short: "List archived manifest generations",
	Long: `List manifest generations kept by 'generate --keep-previous',
newest first. With no argument, lists archives for every cluster.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runArchives,
}

func init() {
	rootCmd.AddCommand(archivesCmd)
}

func runArchives(cmd *cobra.Command, args []string) {
	settings, err := config.LoadSettings()
	if err != nil {
		ui.Fatal("%v", err)
	}
	project, err := config.Load()
	if err != nil {
		ui.Fatal("%v", err)
	}
	exports := exportDir(project, settings)

	var clusters []string
	if len(args) == 1 {
		clusters = args
	} else {
		clusters, err = archive.Clusters(exports)
		if err != nil {
			ui.Fatal("%v", err)
		}
	}
	if len(clusters) == 0 {
		ui.Info("No archives yet (use 'generate --keep-previous')")
		return
	}

	for _, name := range clusters {
		archives, err := archive.List(exports, name)
		if err != nil {
			ui.Fatal("%v", err)
		}
		ui.Header("%s", name)
		if len(archives) == 0 {
			ui.Detail("no archives")
			continue
		}
		for _, a := range archives {
			ui.Detail("%s  %s", a.Created.Format("2006-01-02 15:04:05"), a.Name)
		}
	}
}
