package openai

import (
	"testing"

	"github.com/hupe1980/conceptmesh/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(model.Request{
		Instructions: "score edges",
		Messages: []model.Message{
			{Role: model.RoleUser, Text: "alpha"},
			{Role: model.RoleAssistant, Text: "[]"},
			{Role: "other", Text: ""},
		},
	})
	assert.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
}

func TestInfo(t *testing.T) {
	client := openai.NewClient(option.WithAPIKey("test"))
	m := NewModelFromClient(&client, func(o *Options) { o.Model = "gpt-test" })
	assert.Equal(t, model.Info{Name: "gpt-test", Provider: "openai"}, m.Info())
}
