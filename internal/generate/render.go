package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Render renders a manifest template against the local configuration data.
// Templates get the full sprig function map. Fields missing from the data
// render as empty rather than failing, so a well-formed template never
// errors at execute time.
func Render(name, text string, data map[string]any) (string, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}

	// missingkey=zero still prints "<no value>" for untyped nils
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}
