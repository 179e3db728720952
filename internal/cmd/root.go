// Package cmd provides the CLI commands for stevedore.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.4.0"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stevedore",
	Short: "Deployment manifest generator for clusters",
	Long: `stevedore - load the cargo

Generates deployment manifests for clusters from templated resource
definitions, merging cluster defaults, externally fetched configuration,
and resolved container images.

GENERATION
  generate [cluster]    Generate manifests for one or all clusters
    --resource, -r      Process a single named resource
    --commit, -c        Expected commit id ("head" resolves from git)
    --deploy-id         Deployment id to stamp into manifests ("auto" generates one)
    --fast-rollback     Mark the deployment for fast rollback
    --dry-run, -n       Run the full pipeline without writing files
    --keep-previous     Archive existing manifests before overwriting them
    --verbose, -v       Show debug events and metrics
  archives [cluster]    List archived manifest generations

INVENTORY
  sync                  Rebuild clusters/images.yaml from the docker daemon
  clusters              List cluster definitions

SETUP
  init [dir]            Scaffold a stevedore project
  update                Update stevedore to the latest release`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
