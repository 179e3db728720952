package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cameronsjo/stevedore/internal/ui"
)

// Console writes events to the terminal via the ui package.
// Debug events and metrics are suppressed unless Verbose is set.
type Console struct {
	Verbose bool
}

func (c Console) Debug(msg string, fields Fields) {
	if !c.Verbose {
		return
	}
	ui.Detail("%s%s", msg, formatFields(fields))
}

func (c Console) Info(msg string, fields Fields) {
	ui.Info("%s%s", msg, formatFields(fields))
}

func (c Console) Warn(msg string, fields Fields) {
	ui.Warning("%s%s", msg, formatFields(fields))
}

func (c Console) Fatal(msg string, fields Fields) {
	ui.Error("%s%s", msg, formatFields(fields))
}

func (c Console) Metric(m Metric) {
	if !c.Verbose {
		return
	}
	ui.Detail("metric %s %s%s", m.Kind, m.Name, formatTags(m.Tags))
}

// formatFields renders fields as " (k=v, k=v)" with sorted keys.
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	fields := make(Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}
	return formatFields(fields)
}
