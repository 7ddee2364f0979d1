package memory

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"kora/internal/types"
)

const emptySummary = "No conversation to summarize."

// TopicRule maps a coarse topic label to the keywords that select it. Rules
// are checked in order; the first match wins.
type TopicRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Vocabulary holds the summarizer's topic rules and action-verb list.
type Vocabulary struct {
	Topics  []TopicRule `yaml:"topics"`
	Fallback string     `yaml:"fallback"`
	Actions []string    `yaml:"actions"`
}

// DefaultVocabulary returns the built-in topic rules and action verbs.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Topics: []TopicRule{
			{Label: "Programming", Keywords: []string{"function", "class", "code", "bug", "implement", "debug"}},
			{Label: "File Operations", Keywords: []string{"file", "directory", "folder", "save", "read", "write"}},
			{Label: "Configuration", Keywords: []string{"config", "setup", "install", "configure"}},
			{Label: "Explanation/Help", Keywords: []string{"explain", "help", "how", "what", "why"}},
		},
		Fallback: "General Discussion",
		Actions: []string{
			"create", "build", "implement", "develop", "write", "generate",
			"fix", "debug", "solve", "resolve", "update", "modify", "change",
			"explain", "describe", "analyze", "review", "check", "test",
			"install", "configure", "setup", "deploy", "run", "execute",
			"read", "parse", "load", "save", "export", "import",
			"optimize", "improve", "refactor", "clean", "organize",
		},
	}
}

// LoadVocabulary parses a YAML vocabulary override. Missing sections fall back
// to the defaults so a partial file stays usable.
func LoadVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, err
	}
	defaults := DefaultVocabulary()
	if len(v.Topics) == 0 {
		v.Topics = defaults.Topics
	}
	if strings.TrimSpace(v.Fallback) == "" {
		v.Fallback = defaults.Fallback
	}
	if len(v.Actions) == 0 {
		v.Actions = defaults.Actions
	}
	return v, nil
}

// Summarizer condenses a batch of overflowing conversation turns into one
// compact transcript. It is a heuristic context-budget relief valve, not a
// faithful transcript compressor.
type Summarizer struct {
	vocab Vocabulary
}

// NewSummarizer constructs a summarizer with the default vocabulary.
func NewSummarizer() *Summarizer {
	return NewSummarizerWithVocabulary(DefaultVocabulary())
}

// NewSummarizerWithVocabulary injects a custom vocabulary.
func NewSummarizerWithVocabulary(vocab Vocabulary) *Summarizer {
	if len(vocab.Topics) == 0 {
		vocab = DefaultVocabulary()
	}
	return &Summarizer{vocab: vocab}
}

// Summarize groups contiguous turns sharing a topic label and emits one
// summary block per run. It never fails; empty input yields a fixed sentence.
func (s *Summarizer) Summarize(turns []ConversationTurn) string {
	if len(turns) == 0 {
		return emptySummary
	}

	var parts []string
	currentTopic := ""
	var group []ConversationTurn

	for _, turn := range turns {
		topic := s.detectTopic(userContentForTopic(turn.UserMessage))
		if topic != currentTopic && len(group) > 0 {
			parts = append(parts, s.summarizeTopicGroup(currentTopic, group))
			group = group[:0:0]
		}
		currentTopic = topic
		group = append(group, turn)
	}
	if len(group) > 0 {
		parts = append(parts, s.summarizeTopicGroup(currentTopic, group))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("Conversation covered %d topics:\n%s", len(parts), strings.Join(parts, "\n\n"))
}

// userContentForTopic renders the user message text used for topic matching.
// Code messages are summarized to a short descriptor so the language and a
// content preview participate in keyword matching.
func userContentForTopic(msg types.Message) string {
	if msg.Kind == types.MessageCode {
		content := msg.Content
		if len(content) > 100 {
			content = content[:100] + "..."
		}
		return fmt.Sprintf("Code request in %s: %s", msg.Language, content)
	}
	return msg.Content
}

func (s *Summarizer) detectTopic(content string) string {
	lower := strings.ToLower(content)
	for _, rule := range s.vocab.Topics {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Label
			}
		}
	}
	return s.vocab.Fallback
}

func (s *Summarizer) summarizeTopicGroup(topic string, turns []ConversationTurn) string {
	if len(turns) == 0 {
		return fmt.Sprintf("%s: No activity", topic)
	}

	var keyPoints []string
	codeSnippets := 0
	questionsAsked := 0

	for _, turn := range turns {
		switch turn.UserMessage.Kind {
		case types.MessageCode:
			codeSnippets++
			keyPoints = append(keyPoints, fmt.Sprintf("Code in %s", turn.UserMessage.Language))
		default:
			if strings.Contains(turn.UserMessage.Content, "?") {
				questionsAsked++
			}
			if actions := s.extractActionWords(turn.UserMessage.Content); len(actions) > 0 {
				keyPoints = append(keyPoints, "User: "+strings.Join(actions, ", "))
			}
		}

		if turn.AssistantResponse == nil {
			continue
		}
		switch turn.AssistantResponse.Kind {
		case types.MessageCode:
			keyPoints = append(keyPoints, fmt.Sprintf("Generated %s code", turn.AssistantResponse.Language))
		default:
			if actions := s.extractActionWords(turn.AssistantResponse.Content); len(actions) > 0 {
				keyPoints = append(keyPoints, "Assistant: "+strings.Join(actions, ", "))
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%d turns)", topic, len(turns))
	if questionsAsked > 0 {
		fmt.Fprintf(&b, " - %d questions asked", questionsAsked)
	}
	if codeSnippets > 0 {
		fmt.Fprintf(&b, " - %d code snippets", codeSnippets)
	}
	if len(keyPoints) > 0 {
		const maxPoints = 3
		if len(keyPoints) > maxPoints {
			keyPoints = keyPoints[:maxPoints]
		}
		fmt.Fprintf(&b, "\nKey activities: %s", strings.Join(keyPoints, "; "))
	}
	return b.String()
}

// extractActionWords returns up to three action verbs found in the text,
// deduplicated and alphabetically sorted.
func (s *Summarizer) extractActionWords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, action := range s.vocab.Actions {
		if strings.Contains(lower, action) {
			found = append(found, action)
		}
	}
	sort.Strings(found)
	if len(found) > 3 {
		found = found[:3]
	}
	return found
}
