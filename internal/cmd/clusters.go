package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/ui"
)

// clustersCmd represents the clusters command.
var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List cluster definitions",
	Run:   runClusters,
}

func init() {
	rootCmd.AddCommand(clustersCmd)
}

func runClusters(cmd *cobra.Command, args []string) {
	project, err := config.Load()
	if err != nil {
		ui.Fatal("%v", err)
	}

	definitions, err := cluster.LoadDir(project.ClustersDir())
	if err != nil {
		ui.Fatal("%v", err)
	}
	if len(definitions) == 0 {
		ui.Warning("no cluster definitions in %s", project.ClustersDir())
		return
	}

	ui.Header("Clusters in %s", project.ClustersDir())
	for _, def := range definitions {
		ui.Info("%s", def.Name)
		ui.Detail("environment: %s  namespace: %s  resources: %d", def.Environment, def.Namespace, def.Resources.Len())
	}
}
