package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/stevedore/internal/archive"
	"github.com/cameronsjo/stevedore/internal/cluster"
	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/generate"
	"github.com/cameronsjo/stevedore/internal/gitref"
	"github.com/cameronsjo/stevedore/internal/lock"
	"github.com/cameronsjo/stevedore/internal/ui"
)

var (
	generateResource     string
	generateCommit       string
	generateDeployID     string
	generateFastRollback bool
	generateDryRun       bool
	generateKeepPrev     bool
	generateVerbose      bool
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate [cluster]",
	Short: "Generate deployment manifests",
	Long: `Generate deployment manifests for one or all clusters.

Each cluster definition under clusters/ produces one directory under the
export root with one manifest per resource, plus a service file for
resources that declare svc. YAML resource files are copied verbatim,
template files render with the resource's merged local configuration.

Examples:
  # Generate every cluster
  stevedore generate

  # Generate one cluster, pinning images to the current git commit
  stevedore generate staging -c head

  # Validate a single resource without writing anything
  stevedore generate staging -r node-auth -n -v`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateResource, "resource", "r", "", "Process a single named resource")
	generateCmd.Flags().StringVarP(&generateCommit, "commit", "c", "", "Expected commit id (\"head\" resolves from the local git repo)")
	generateCmd.Flags().StringVar(&generateDeployID, "deploy-id", "", "Deployment id to stamp into manifests (\"auto\" generates one)")
	generateCmd.Flags().BoolVar(&generateFastRollback, "fast-rollback", false, "Mark the deployment for fast rollback")
	generateCmd.Flags().BoolVarP(&generateDryRun, "dry-run", "n", false, "Run the full pipeline without writing files")
	generateCmd.Flags().BoolVar(&generateKeepPrev, "keep-previous", false, "Archive existing manifests before overwriting them")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Show debug events and metrics")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	settings, err := config.LoadSettings()
	if err != nil {
		ui.Fatal("%v", err)
	}
	project, err := config.Load()
	if err != nil {
		ui.Fatal("%v", err)
	}

	defs := cluster.ImageDefs{}
	if _, statErr := os.Stat(project.ImagesFile()); statErr == nil {
		defs, err = cluster.LoadImageDefs(project.ImagesFile())
		if err != nil {
			ui.Fatal("%v", err)
		}
	} else {
		ui.Warning("no image table at %s (run 'stevedore sync')", project.ImagesFile())
	}

	var definitions []*cluster.Definition
	if len(args) == 1 {
		def, err := cluster.Load(filepath.Join(project.ClustersDir(), args[0]+".yaml"))
		if err != nil {
			ui.Fatal("%v", err)
		}
		definitions = []*cluster.Definition{def}
	} else {
		definitions, err = cluster.LoadDir(project.ClustersDir())
		if err != nil {
			ui.Fatal("%v", err)
		}
	}
	if len(definitions) == 0 {
		ui.Warning("no cluster definitions in %s", project.ClustersDir())
		return
	}

	commit := generateCommit
	if strings.EqualFold(commit, "head") {
		sha, _, err := gitref.Head(".")
		if err != nil {
			ui.Fatal("resolve commit from git: %v", err)
		}
		commit = gitref.Short(sha)
		ui.Info("Using commit %s from git HEAD", commit)
	}

	deployID := generateDeployID
	if deployID == "auto" {
		deployID = uuid.NewString()
		ui.Info("Using deployment id %s", deployID)
	}

	fetcher, flags := buildCapabilities(settings)
	exports := exportDir(project, settings)
	gen := generate.New(defs, buildEmitter(generateVerbose),
		generate.WithFetcher(fetcher),
		generate.WithFlags(flags),
		generate.WithExportDir(exports),
		generate.WithRegistry(settings.RegistryPrefix, settings.ReleaseLabel),
		generate.WithFeatureFlag(settings.CommitImagesFlag),
		generate.WithAppID(settings.AppID),
		generate.WithServiceTemplate(settings.ServiceTemplate),
		generate.WithCommit(commit),
		generate.WithDeployment(deployID, generateFastRollback),
		generate.WithResource(generateResource),
		generate.WithSave(!generateDryRun),
	)

	failed := 0
	err = lock.With(project.Root, "generate", func() error {
		for _, def := range definitions {
			ui.Crane("Generating %s", def.Name)
			if generateKeepPrev && !generateDryRun {
				name, err := archive.Keep(exports, def.Name)
				if err != nil {
					ui.Fatal("%v", err)
				}
				if name != "" {
					ui.Detail("kept previous manifests as %s", name)
				}
			}
			if err := gen.Process(context.Background(), def); err != nil {
				ui.Error("%s: %v", def.Name, err)
				failed++
				continue
			}
			ui.Cargo("%s done", def.Name)
		}
		return nil
	})
	if err != nil {
		ui.Fatal("%v", err)
	}

	if failed > 0 {
		ui.Red.Printf("\n✗ %d cluster(s) failed\n", failed)
		os.Exit(1)
	}
	if generateDryRun {
		ui.Success("Dry run complete, nothing written")
		return
	}
	ui.Success("All clusters generated")
}
