package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kora/internal/utils"
)

// listConcurrency bounds the parallel metadata reads during a listing scan.
const listConcurrency = 8

// SessionInfo is the listing projection of a stored session.
type SessionInfo struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// SessionStore persists sessions as one JSON document per session inside a
// storage directory. Durable storage is authoritative; in-memory caches above
// this store are an optimization only.
type SessionStore struct {
	baseDir string
	logger  *utils.Logger
}

// NewSessionStore creates the storage directory if needed and returns a store
// rooted at it. A leading ~/ is expanded against the user home directory.
func NewSessionStore(baseDir string) *SessionStore {
	baseDir = ExpandPath(baseDir)
	_ = os.MkdirAll(baseDir, 0755) // Ignore error - directory may already exist
	return &SessionStore{
		baseDir: baseDir,
		logger:  utils.NewComponentLogger("SessionStore"),
	}
}

// Dir returns the resolved storage directory.
func (s *SessionStore) Dir() string {
	return s.baseDir
}

func (s *SessionStore) path(sessionID string) string {
	return filepath.Join(s.baseDir, sessionID+".json")
}

// Save writes the full session document. The write goes to a temp file in the
// same directory followed by a rename, so a concurrent reader never observes
// a half-written session.
func (s *SessionStore) Save(ctx context.Context, session *ConversationSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	tmp, err := os.CreateTemp(s.baseDir, session.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write session %s: %w", session.ID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(session.ID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads and decodes one session. Missing files map to
// ErrSessionNotFound; undecodable files surface as decode errors.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*ConversationSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	var session ConversationSession
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Error("Failed to decode session file %s: %v", sessionID, err)
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// sessionHeader is the minimal projection List needs from each document.
// Unknown fields are ignored, which is what keeps listing forward-compatible
// with newer session schemas.
type sessionHeader struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List scans the storage directory and returns one entry per parsable session
// file, sorted by last update descending. Entries that fail to read or decode
// are skipped rather than aborting the scan.
func (s *SessionStore) List(ctx context.Context) ([]SessionInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session directory: %w", err)
	}

	var (
		mu       sync.Mutex
		sessions []SessionInfo
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sessionID := strings.TrimSuffix(entry.Name(), ".json")
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(s.path(sessionID))
			if err != nil {
				s.logger.Warn("Skipping session file %s: %v", sessionID, err)
				return nil
			}
			var header sessionHeader
			if err := json.Unmarshal(data, &header); err != nil {
				s.logger.Warn("Skipping undecodable session file %s: %v", sessionID, err)
				return nil
			}
			info := SessionInfo{ID: sessionID, Name: header.Name, UpdatedAt: header.UpdatedAt}
			mu.Lock()
			sessions = append(sessions, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Delete removes one session file. The engine itself never calls this;
// retention tooling does.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}
