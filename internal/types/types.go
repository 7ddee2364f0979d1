// Package types declares the conversation data model shared by the memory
// engine and its callers: messages exchanged with the assistant and the
// context items that accompany them.
package types

import (
	"fmt"
	"time"

	id "kora/internal/utils/id"
)

// MessageSender identifies who produced a message.
type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
	SenderSystem    MessageSender = "system"
)

// MessageKind distinguishes plain text from code payloads.
type MessageKind string

const (
	MessageText MessageKind = "text"
	MessageCode MessageKind = "code"
)

// Message is a single utterance in a conversation.
type Message struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Sender    MessageSender `json:"sender"`
	Kind      MessageKind   `json:"kind"`
	Content   string        `json:"content"`
	// Language is set for code messages.
	Language string `json:"language,omitempty"`
	// Provider and Model are set on assistant messages.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// NewUserMessage builds a completed text message from the user.
func NewUserMessage(content string) Message {
	return Message{
		ID:        id.NewMessageID(),
		Timestamp: time.Now(),
		Sender:    SenderUser,
		Kind:      MessageText,
		Content:   content,
	}
}

// NewUserCodeMessage builds a code message from the user.
func NewUserCodeMessage(language, content string) Message {
	msg := NewUserMessage(content)
	msg.Kind = MessageCode
	msg.Language = language
	return msg
}

// NewAssistantMessage builds a text reply attributed to a provider/model pair.
func NewAssistantMessage(content, provider, model string) Message {
	return Message{
		ID:        id.NewMessageID(),
		Timestamp: time.Now(),
		Sender:    SenderAssistant,
		Kind:      MessageText,
		Content:   content,
		Provider:  provider,
		Model:     model,
	}
}

// NewSystemMessage builds a system-originated text message.
func NewSystemMessage(content string) Message {
	return Message{
		ID:        id.NewMessageID(),
		Timestamp: time.Now(),
		Sender:    SenderSystem,
		Kind:      MessageText,
		Content:   content,
	}
}

// ContextType enumerates the kinds of context material fed to a model.
type ContextType string

const (
	ContextFile    ContextType = "file"
	ContextCode    ContextType = "code"
	ContextText    ContextType = "text"
	ContextGitDiff ContextType = "git_diff"
	ContextCommand ContextType = "command"
)

// ContextKind carries the context type plus its kind-specific attributes.
type ContextKind struct {
	Type     ContextType `json:"type"`
	Path     string      `json:"path,omitempty"`
	Language string      `json:"language,omitempty"`
	Command  string      `json:"command,omitempty"`
}

// ContextItem is one atomic piece of contextual material shown to the model.
// Content is treated as immutable once the item is attached to a persisted
// turn; transformations produce new items instead of editing in place.
type ContextItem struct {
	Kind     ContextKind    `json:"kind"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTextItem wraps plain text as a context item.
func NewTextItem(content string) ContextItem {
	return ContextItem{Kind: ContextKind{Type: ContextText}, Content: content}
}

// NewFileItem wraps a file excerpt as a context item.
func NewFileItem(path, content string) ContextItem {
	return ContextItem{Kind: ContextKind{Type: ContextFile, Path: path}, Content: content}
}

// NewCodeItem wraps a code block as a context item.
func NewCodeItem(language, content string) ContextItem {
	return ContextItem{Kind: ContextKind{Type: ContextCode, Language: language}, Content: content}
}

// NewCommandItem wraps a shell command transcript as a context item.
func NewCommandItem(command, output string) ContextItem {
	return ContextItem{Kind: ContextKind{Type: ContextCommand, Command: command}, Content: output}
}

// NewGitDiffItem wraps a git diff as a context item.
func NewGitDiffItem(content string) ContextItem {
	return ContextItem{Kind: ContextKind{Type: ContextGitDiff}, Content: content}
}

// Rendered returns the message content the way it is surfaced to a model:
// code messages are fenced, text passes through.
func (m Message) Rendered() string {
	if m.Kind == MessageCode {
		return fmt.Sprintf("```%s\n%s\n```", m.Language, m.Content)
	}
	return m.Content
}
