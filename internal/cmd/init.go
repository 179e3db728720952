package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cameronsjo/stevedore/internal/ui"
)

const exampleCluster = `name: %[1]s
environment: development
namespace: %[1]s
branch: develop
config:
  replicas: 1
resources:
  node-auth:
    file: deployment.yaml.tmpl
    image_tag: node-auth
    svc:
      port: 8080
`

const exampleDeploymentTemplate = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{ .name }}
spec:
  replicas: {{ .replicas }}
  template:
    spec:
      containers:
        - name: {{ .name }}
          image: {{ (index . .name).image }}
`

const exampleServiceTemplate = `apiVersion: v1
kind: Service
metadata:
  name: {{ .name }}
spec:
  ports:
    - port: {{ .svc.port }}
`

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a stevedore project",
	Long: `Scaffold a stevedore project: a clusters/ directory with an example
cluster definition, deployment template, and the shared service template.

Prompts for the cluster name when run on a terminal.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	clusterName := "local"
	if isInteractive() {
		fmt.Printf("Cluster name [%s]: ", clusterName)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			clusterName = line
		}
	}

	clustersDir := filepath.Join(root, "clusters")
	if err := os.MkdirAll(clustersDir, 0755); err != nil {
		ui.Fatal("create clusters directory: %v", err)
	}

	files := map[string]string{
		clusterName + ".yaml":  fmt.Sprintf(exampleCluster, clusterName),
		"deployment.yaml.tmpl": exampleDeploymentTemplate,
		"svc.yaml.tmpl":        exampleServiceTemplate,
	}
	for name, content := range files {
		path := filepath.Join(clustersDir, name)
		if _, err := os.Stat(path); err == nil {
			ui.Warning("%s exists, skipping", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			ui.Fatal("write %s: %v", path, err)
		}
		ui.Success("Created %s", path)
	}

	ui.Info("\nNext steps:")
	ui.Detail("stevedore sync      # build the image table")
	ui.Detail("stevedore generate  # generate manifests")
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
