package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate(`{{upper .Branch}}: {{join ", " .Summary}} ({{.Retained}} {{plural .Retained "link" "links"}}, {{fixed 2 .Capacity}})`, map[string]any{
		"Branch":   "formal",
		"Summary":  []string{"alpha", "bravo"},
		"Retained": 1,
		"Capacity": 0.456,
	})
	require.NoError(t, err)
	assert.Equal(t, "FORMAL: alpha, bravo (1 link, 0.46)", out)
}

func TestRenderTemplate_FastPath(t *testing.T) {
	out, err := RenderTemplate("plain <text>", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain <text>", out)
}

func TestRenderTemplate_Errors(t *testing.T) {
	_, err := RenderTemplate("{{.Missing}}", map[string]any{})
	assert.Error(t, err)

	_, err = RenderTemplate("{{if}}", map[string]any{})
	assert.Error(t, err)
}

func TestRenderTemplate_Default(t *testing.T) {
	out, err := RenderTemplate(`{{default "n/a" .Style}} {{title .Branch}}`, map[string]any{"Style": "", "Branch": "pERSONAL"})
	require.NoError(t, err)
	assert.Equal(t, "n/a Personal", out)
}
