package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	tokenutil "kora/internal/shared/token"
	"kora/internal/types"
	"kora/internal/utils"
	id "kora/internal/utils/id"
)

// sessionCacheSize bounds the in-memory cache of previously touched sessions.
// The cache is an optimization; durable storage stays authoritative.
const sessionCacheSize = 32

// summaryPlaceholder is what summary turns are billed at, not the real
// summary length.
const summaryPlaceholder = "[SUMMARY]"

// Option customizes a Manager.
type Option func(*Manager)

// WithRegisterer wires the engine's collectors into a Prometheus registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) { m.metrics = newEngineMetrics(reg) }
}

// WithVocabulary overrides the summarizer vocabulary.
func WithVocabulary(vocab Vocabulary) Option {
	return func(m *Manager) { m.summarizer = NewSummarizerWithVocabulary(vocab) }
}

// Manager orchestrates session lifecycle, turn lifecycle, window maintenance,
// context assembly and persistence. It owns at most one current session at a
// time behind a single read/write exclusion: mutating calls serialize,
// read-only calls may run concurrently with each other.
type Manager struct {
	mu         sync.RWMutex
	config     Config
	current    *ConversationSession
	cache      *lru.Cache[string, *ConversationSession]
	store      *SessionStore
	diffEngine *DiffEngine
	summarizer *Summarizer
	logger     *utils.Logger
	metrics    *engineMetrics
}

// NewManager constructs a memory manager rooted at the configured storage
// directory.
func NewManager(config Config, opts ...Option) *Manager {
	cache, _ := lru.New[string, *ConversationSession](sessionCacheSize)
	m := &Manager{
		config:     config,
		cache:      cache,
		store:      NewSessionStore(config.SessionStoragePath),
		diffEngine: NewDiffEngine(),
		summarizer: NewSummarizer(),
		logger:     utils.NewComponentLogger("ContextMemory"),
		metrics:    newEngineMetrics(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the manager's live configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Store exposes the underlying session store for tooling (listing, retention)
// that operates outside the engine.
func (m *Manager) Store() *SessionStore {
	return m.store
}

// CreateSession starts a new session, makes it current and persists it
// immediately. An empty name gets a generated one embedding the current time.
func (m *Manager) CreateSession(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessionID := id.NewSessionID()
	if name == "" {
		name = "Session " + time.Now().Format("2006-01-02 15:04")
	}

	now := time.Now()
	session := &ConversationSession{
		ID:                sessionID,
		Name:              name,
		CreatedAt:         now,
		UpdatedAt:         now,
		ConversationTurns: []ConversationTurn{},
		CumulativeContext: []types.ContextItem{},
		SessionMetadata:   map[string]any{},
		Config:            m.config,
	}

	m.current = session
	m.cache.Add(sessionID, session)

	if err := m.store.Save(ctx, session); err != nil {
		return "", err
	}
	m.logger.Info("Created session %s (%q)", sessionID, name)
	return sessionID, nil
}

// LoadSession makes the identified session current. A cache hit
// short-circuits to memory; a miss reads from storage.
func (m *Manager) LoadSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.cache.Get(sessionID); ok {
		m.current = session
		return nil
	}

	session, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	m.current = session
	m.cache.Add(sessionID, session)
	m.logger.Info("Loaded session %s (%q, %d turns)", sessionID, session.Name, len(session.ConversationTurns))
	return nil
}

// CurrentSessionID reports the current session, if any.
func (m *Manager) CurrentSessionID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", false
	}
	return m.current.ID, true
}

// AddTurn appends a pending conversation turn to the current session, folds
// the supplied context into the cumulative context when diff compression is
// on, runs window maintenance and writes through to storage. It returns the
// new turn's identifier.
func (m *Manager) AddTurn(ctx context.Context, userMessage types.Message, contextItems []types.ContextItem) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "", ErrNoActiveSession
	}

	turnID := id.NewTurnID()
	estimate := estimateTurnTokens(userMessage, contextItems)
	turn := ConversationTurn{
		ID:              turnID,
		Timestamp:       time.Now(),
		UserMessage:     userMessage,
		ContextSnapshot: append([]types.ContextItem(nil), contextItems...),
		TokensUsed:      estimate,
	}

	if m.config.EnableDiffCompression {
		m.foldContext(contextItems)
	}

	m.current.ConversationTurns = append(m.current.ConversationTurns, turn)
	m.current.UpdatedAt = time.Now()

	m.maintainWindow()

	m.cache.Add(m.current.ID, m.current)
	m.metrics.turnsAdded.Inc()
	m.logger.Debug("Turn %s added to %s: %d estimated tokens (%d per cl100k)",
		turnID, m.current.ID, estimate, tokenutil.CountTokens(userMessage.Content))

	if err := m.store.Save(ctx, m.current); err != nil {
		return "", err
	}
	return turnID, nil
}

// CompleteTurn attaches the assistant response to the matching turn and adds
// the response-side token estimate to its running total. An unknown turn id
// is logged and otherwise ignored; the session is persisted either way.
func (m *Manager) CompleteTurn(ctx context.Context, turnID string, response types.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoActiveSession
	}

	found := false
	for i := range m.current.ConversationTurns {
		if m.current.ConversationTurns[i].ID != turnID {
			continue
		}
		m.current.ConversationTurns[i].AssistantResponse = &response
		m.current.ConversationTurns[i].TokensUsed += tokenutil.EstimateFast(response.Content)
		found = true
		break
	}
	if !found {
		// Kept as a no-op for compatibility; the turn may have been evicted
		// or summarized between AddTurn and completion.
		m.logger.Warn("CompleteTurn: turn %s not present in session %s", turnID, m.current.ID)
	}

	m.current.UpdatedAt = time.Now()
	m.cache.Add(m.current.ID, m.current)
	return m.store.Save(ctx, m.current)
}

// ContextForRequest assembles the bounded, deduplicated context list for the
// next generation request: one item per user message and one per completed
// assistant response across the most recent window, oldest first.
func (m *Manager) ContextForRequest() ([]types.ContextItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNoActiveSession
	}

	turns := m.current.ConversationTurns
	if len(turns) > m.config.MaxContextTurns {
		turns = turns[len(turns)-m.config.MaxContextTurns:]
	}

	items := make([]types.ContextItem, 0, len(turns)*2)
	for _, turn := range turns {
		items = append(items, messageToContextItem(turn.UserMessage, "user"))
		if turn.AssistantResponse != nil {
			items = append(items, messageToContextItem(*turn.AssistantResponse, "assistant"))
		}
	}

	if m.config.EnableDiffCompression {
		items = m.diffEngine.Compress(items)
	}
	return items, nil
}

// ConversationSummary returns the turn sequence for display. With a positive
// limit the most recent turns come back newest first; without one the whole
// sequence comes back in chronological order.
func (m *Manager) ConversationSummary(limit int) ([]ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNoActiveSession
	}

	turns := m.current.ConversationTurns
	if limit <= 0 || limit >= len(turns) {
		if limit > 0 {
			// Limited requests stay newest-first even when the limit covers
			// everything.
			reversed := make([]ConversationTurn, 0, len(turns))
			for i := len(turns) - 1; i >= 0; i-- {
				reversed = append(reversed, turns[i])
			}
			return reversed, nil
		}
		return append([]ConversationTurn(nil), turns...), nil
	}

	recent := make([]ConversationTurn, 0, limit)
	for i := len(turns) - 1; i >= len(turns)-limit; i-- {
		recent = append(recent, turns[i])
	}
	return recent, nil
}

// ListSessions scans storage and returns id, name and last update per
// session, most recently updated first.
func (m *Manager) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	return m.store.List(ctx)
}

// foldContext merges new context into the session's cumulative context. The
// first snapshot is adopted wholesale; later snapshots go through a
// create/apply diff cycle.
func (m *Manager) foldContext(newContext []types.ContextItem) {
	session := m.current
	if len(session.CumulativeContext) == 0 {
		session.CumulativeContext = append([]types.ContextItem(nil), newContext...)
		return
	}

	diff := m.diffEngine.CreateDiff(session.CumulativeContext, newContext)
	session.CumulativeContext = m.diffEngine.ApplyDiff(session.CumulativeContext, diff)
	m.metrics.compressionRatio.Set(diff.CompressionRatio)
	m.logger.Debug("Folded %d context items into %s: ratio %.3f, +%d ~%d -%d",
		len(newContext), session.ID, diff.CompressionRatio,
		len(diff.AddedItems), len(diff.ModifiedItems), len(diff.RemovedItemIDs))
}

// maintainWindow enforces the turn-count hard cap, then the token soft cap.
// The hard cap drops oldest turns outright and runs unconditionally before
// the token check.
func (m *Manager) maintainWindow() {
	session := m.current

	for len(session.ConversationTurns) > m.config.MaxContextTurns {
		session.ConversationTurns = session.ConversationTurns[1:]
		m.metrics.turnsEvicted.Inc()
	}

	if session.TotalTokens() <= m.config.MaxContextTokens {
		return
	}

	if !m.config.EnableSummarization {
		for len(session.ConversationTurns) > m.config.MaxContextTurns/2 {
			session.ConversationTurns = session.ConversationTurns[1:]
			m.metrics.turnsEvicted.Inc()
		}
		return
	}

	keep := m.config.MaxContextTurns / 2
	if len(session.ConversationTurns) <= keep {
		return
	}

	count := len(session.ConversationTurns) - keep
	summarized := append([]ConversationTurn(nil), session.ConversationTurns[:count]...)
	session.ConversationTurns = append([]ConversationTurn(nil), session.ConversationTurns[count:]...)

	summaryText := m.summarizer.Summarize(summarized)
	response := types.NewSystemMessage(summaryText)
	summaryTurn := ConversationTurn{
		ID:                id.NewTurnID(),
		Timestamp:         time.Now(),
		UserMessage:       types.NewSystemMessage(fmt.Sprintf("%s Previous conversation containing %d turns", summaryPlaceholder, count)),
		AssistantResponse: &response,
		ContextSnapshot:   []types.ContextItem{},
		// Billed at the fixed placeholder, not the real summary length.
		TokensUsed: tokenutil.EstimateFast(summaryPlaceholder),
	}

	session.ConversationTurns = append([]ConversationTurn{summaryTurn}, session.ConversationTurns...)
	session.SessionMetadata["last_summarization"] = time.Now().Format(time.RFC3339)
	session.SessionMetadata["turns_summarized"] = count

	m.metrics.summarizations.Inc()
	m.metrics.turnsSummarized.Add(float64(count))
	m.logger.Info("Summarized %d turns in session %s", count, session.ID)
}

// estimateTurnTokens is the user-side estimate at turn creation: the message
// plus every supplied context item, all on the fixed heuristic.
func estimateTurnTokens(message types.Message, contextItems []types.ContextItem) int {
	total := tokenutil.EstimateFast(message.Content)
	for _, item := range contextItems {
		total += tokenutil.EstimateFast(item.Content)
	}
	return total
}

// messageToContextItem converts a conversation message into a plain-text
// context item tagged with its role and timestamp.
func messageToContextItem(message types.Message, role string) types.ContextItem {
	return types.ContextItem{
		Kind:    types.ContextKind{Type: types.ContextText},
		Content: message.Rendered(),
		Metadata: map[string]any{
			"role":      role,
			"timestamp": message.Timestamp.Format(time.RFC3339),
		},
	}
}
