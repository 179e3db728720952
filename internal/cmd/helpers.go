package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/cameronsjo/stevedore/internal/config"
	"github.com/cameronsjo/stevedore/internal/events"
	"github.com/cameronsjo/stevedore/internal/plugin"
)

// buildEmitter wires the console and structured-log sinks.
func buildEmitter(verbose bool) events.Emitter {
	level := logrus.WarnLevel
	if verbose {
		level = logrus.DebugLevel
	}
	return events.Multi{
		events.Console{Verbose: verbose},
		events.NewLog(level),
	}
}

// buildCapabilities picks the configuration-fetch and feature-flag
// implementations from settings. Unset services yield null capabilities.
func buildCapabilities(settings config.Settings) (plugin.ConfigFetcher, plugin.FeatureFlags) {
	var fetcher plugin.ConfigFetcher = plugin.UnsetFetcher{}
	switch {
	case settings.ConfigServiceURL != "":
		fetcher = plugin.NewHTTPFetcher(settings.ConfigServiceURL)
	case settings.SecretsFile != "":
		fetcher = plugin.NewSOPSFetcher(settings.SecretsFile)
	}

	var flags plugin.FeatureFlags = plugin.UnsetFlags{}
	if settings.FlagServiceURL != "" {
		flags = plugin.NewHTTPFlags(settings.FlagServiceURL)
	}
	return fetcher, flags
}

// exportDir resolves the export root against the project root.
func exportDir(project *config.Project, settings config.Settings) string {
	if filepath.IsAbs(settings.ExportDir) {
		return settings.ExportDir
	}
	return filepath.Join(project.Root, settings.ExportDir)
}
