package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/conceptmesh/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages([]model.Message{
		{Role: model.RoleSystem, Text: "ignored here"},
		{Role: model.RoleUser, Text: "alpha"},
		{Role: model.RoleAssistant, Text: "[]"},
		{Role: model.RoleUser, Text: ""},
	})
	assert.Len(t, msgs, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "score edges",
		Messages:     []model.Message{{Role: model.RoleSystem, Text: "be terse"}},
	})
	assert.Len(t, blocks, 2)
	assert.Equal(t, "score edges", blocks[0].Text)
	assert.Equal(t, "be terse", blocks[1].Text)
}

func TestInfo(t *testing.T) {
	client := anthropic.NewClient(option.WithAPIKey("test"))
	m := NewModelFromClient(&client)
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.Equal(t, string(anthropic.ModelClaude3_5Sonnet20241022), m.Info().Name)
}
