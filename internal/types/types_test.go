package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	user := NewUserMessage("hello")
	assert.Equal(t, SenderUser, user.Sender)
	assert.Equal(t, MessageText, user.Kind)
	assert.True(t, strings.HasPrefix(user.ID, "msg-"))
	assert.False(t, user.Timestamp.IsZero())

	assistant := NewAssistantMessage("hi", "openai", "gpt-4o")
	assert.Equal(t, SenderAssistant, assistant.Sender)
	assert.Equal(t, "openai", assistant.Provider)
	assert.Equal(t, "gpt-4o", assistant.Model)

	system := NewSystemMessage("[SUMMARY] stuff")
	assert.Equal(t, SenderSystem, system.Sender)
}

func TestMessageRendered(t *testing.T) {
	text := NewUserMessage("plain")
	assert.Equal(t, "plain", text.Rendered())

	code := NewUserCodeMessage("go", "func main() {}")
	assert.Equal(t, "```go\nfunc main() {}\n```", code.Rendered())
}

func TestContextItemConstructors(t *testing.T) {
	file := NewFileItem("a/b.go", "package b")
	assert.Equal(t, ContextFile, file.Kind.Type)
	assert.Equal(t, "a/b.go", file.Kind.Path)

	cmd := NewCommandItem("go test ./...", "ok")
	assert.Equal(t, ContextCommand, cmd.Kind.Type)
	assert.Equal(t, "go test ./...", cmd.Kind.Command)
	assert.Equal(t, "ok", cmd.Content)
}
