package memory

import (
	"time"

	"kora/internal/types"
)

// ConversationTurn is one user instruction plus its (optional) assistant
// reply. A turn is created pending (no response) and completed once the
// assistant answers; it is never deleted individually, only evicted or
// summarized as part of a batch by window maintenance.
type ConversationTurn struct {
	ID                string              `json:"id"`
	Timestamp         time.Time           `json:"timestamp"`
	UserMessage       types.Message       `json:"user_message"`
	AssistantResponse *types.Message      `json:"assistant_response,omitempty"`
	ContextSnapshot   []types.ContextItem `json:"context_snapshot"`
	// TokensUsed accumulates in two stages: the user-side estimate at creation
	// and the response-side estimate at completion.
	TokensUsed int `json:"tokens_used"`
}

// ConversationSession is the durable unit of conversation state. Field names
// are stable; ListSessions reads name and updated_at out of partially parsed
// documents, so the format must remain forward-compatible field-wise.
type ConversationSession struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// ConversationTurns is ordered oldest first: appends at the tail,
	// eviction and summary insertion at the head.
	ConversationTurns []ConversationTurn `json:"conversation_turns"`
	// CumulativeContext is the deduplicated superset of all context items
	// seen so far in the session.
	CumulativeContext []types.ContextItem `json:"cumulative_context"`
	SessionMetadata   map[string]any      `json:"session_metadata"`
	// Config snapshots the memory configuration in effect when the session
	// was created; sessions are self-describing.
	Config Config `json:"config"`
}

// TotalTokens sums the token estimates across all turns.
func (s *ConversationSession) TotalTokens() int {
	total := 0
	for _, turn := range s.ConversationTurns {
		total += turn.TokensUsed
	}
	return total
}
