package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	data := map[string]any{
		"name":     "node-auth",
		"replicas": 2,
	}

	out, err := Render("test", "name: {{ .name }}\nreplicas: {{ .replicas }}\n", data)
	require.NoError(t, err)
	assert.Equal(t, "name: node-auth\nreplicas: 2\n", out)
}

func TestRenderSprigFunctions(t *testing.T) {
	out, err := Render("test", `{{ .name | upper }}-{{ .name | trunc 4 }}`, map[string]any{"name": "stevedore"})
	require.NoError(t, err)
	assert.Equal(t, "STEVEDORE-stev", out)
}

func TestRenderMissingFieldIsEmpty(t *testing.T) {
	out, err := Render("test", "value: {{ .missing }}\n", map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "value: \n", out)
}

func TestRenderParseError(t *testing.T) {
	_, err := Render("bad", "{{ .name", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestRenderNestedContainerData(t *testing.T) {
	data := map[string]any{
		"name": "node-auth",
		"node-auth": map[string]any{
			"image": "registry.internal/node-auth:develop",
		},
	}

	out, err := Render("test", `image: {{ (index . .name).image }}`, data)
	require.NoError(t, err)
	assert.Equal(t, "image: registry.internal/node-auth:develop", out)
}
