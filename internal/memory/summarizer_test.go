package memory

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kora/internal/types"
)

func turnWithText(user string) ConversationTurn {
	return ConversationTurn{
		ID:          "turn-test",
		Timestamp:   time.Now(),
		UserMessage: types.NewUserMessage(user),
	}
}

func completedTurn(user, assistant string) ConversationTurn {
	turn := turnWithText(user)
	response := types.NewAssistantMessage(assistant, "test", "test-model")
	turn.AssistantResponse = &response
	return turn
}

func TestSummarize_Empty(t *testing.T) {
	s := NewSummarizer()
	assert.Equal(t, "No conversation to summarize.", s.Summarize(nil))
}

func TestSummarize_SingleTopicVerbatim(t *testing.T) {
	s := NewSummarizer()

	summary := s.Summarize([]ConversationTurn{
		turnWithText("Please fix the bug in this function"),
		turnWithText("Now debug the remaining code"),
	})

	assert.True(t, strings.HasPrefix(summary, "**Programming** (2 turns)"), "got %q", summary)
	assert.NotContains(t, summary, "Conversation covered")
}

func TestSummarize_MultipleTopics(t *testing.T) {
	s := NewSummarizer()

	summary := s.Summarize([]ConversationTurn{
		turnWithText("Implement a function for parsing"),
		turnWithText("Now install and configure the tool"),
	})

	assert.True(t, strings.HasPrefix(summary, "Conversation covered 2 topics:"), "got %q", summary)
	assert.Contains(t, summary, "**Programming**")
	assert.Contains(t, summary, "**Configuration**")
}

func TestSummarize_CountsQuestionsAndCode(t *testing.T) {
	s := NewSummarizer()

	code := ConversationTurn{
		ID:          "turn-code",
		Timestamp:   time.Now(),
		UserMessage: types.NewUserCodeMessage("go", "func main() {}\n"),
	}

	summary := s.Summarize([]ConversationTurn{
		turnWithText("What does this function do?"),
		code,
	})

	assert.Contains(t, summary, "1 questions asked")
	assert.Contains(t, summary, "1 code snippets")
	assert.Contains(t, summary, "Code in go")
}

func TestSummarize_ActionWordsSortedAndCapped(t *testing.T) {
	s := NewSummarizer()

	summary := s.Summarize([]ConversationTurn{
		turnWithText("deploy this function, then fix it, create a release and build everything"),
	})

	// build, create, deploy, fix found; alphabetical order, capped at three.
	assert.Contains(t, summary, "User: build, create, deploy")
	assert.NotContains(t, summary, "fix")
}

func TestSummarize_AssistantActivities(t *testing.T) {
	s := NewSummarizer()

	summary := s.Summarize([]ConversationTurn{
		completedTurn("please help with my file", "I will read and parse the file"),
	})

	assert.Contains(t, summary, "Assistant: parse, read")
}

func TestLoadVocabulary(t *testing.T) {
	data := []byte(`
topics:
  - label: Databases
    keywords: [sql, index, query]
fallback: Chatter
`)
	vocab, err := LoadVocabulary(data)
	require.NoError(t, err)

	assert.Equal(t, "Databases", vocab.Topics[0].Label)
	assert.Equal(t, "Chatter", vocab.Fallback)
	assert.NotEmpty(t, vocab.Actions, "actions fall back to defaults")

	s := NewSummarizerWithVocabulary(vocab)
	summary := s.Summarize([]ConversationTurn{turnWithText("optimize this sql query")})
	assert.True(t, strings.HasPrefix(summary, "**Databases**"), "got %q", summary)
}

func TestLoadVocabulary_BadYAML(t *testing.T) {
	_, err := LoadVocabulary([]byte("topics: [unclosed"))
	assert.Error(t, err)
}
