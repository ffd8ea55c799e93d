// Package session holds the per-installation user context: the registered user
// and the id of a document whose creation was interrupted.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/store"
	"github.com/jonathan/cv-editor/internal/types"
)

var (
	// ErrNotRegistered is returned when an operation needs a user and none is registered.
	ErrNotRegistered = errors.New("no user registered; run `cvctl register <name>` first")
	// ErrNoDraft is returned when there is no interrupted draft to resume.
	ErrNoDraft = errors.New("no interrupted draft")
	// ErrEmptyName is returned when registering without a display name.
	ErrEmptyName = errors.New("name is required")
)

// Session is the persisted user context.
type Session struct {
	UserID      string `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	LastDraftID string `json:"lastCreateCvId,omitempty"`
}

// Registrar creates users on the remote service.
type Registrar interface {
	RegisterUser(ctx context.Context, name string) (*types.User, error)
}

// DocumentGetter reads documents from the remote service.
type DocumentGetter interface {
	GetCV(ctx context.Context, id string) (*types.CV, error)
}

// Manager is the single owner of the session. It loads the session once and writes
// every change through to the backend.
type Manager struct {
	backend Backend
	log     *logger.Logger

	mu      sync.Mutex
	current Session
}

// NewManager creates a manager persisting to backend.
func NewManager(backend Backend, log *logger.Logger) *Manager {
	return &Manager{backend: backend, log: logger.OrNop(log)}
}

// Load reads the session from the backend. A missing session is an empty one.
func (m *Manager) Load(ctx context.Context) (Session, error) {
	s, err := m.backend.Load(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return s, nil
}

func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// RequireUser returns the session, or ErrNotRegistered when no user exists.
func (m *Manager) RequireUser() (Session, error) {
	s := m.Current()
	if s.UserID == "" {
		return s, ErrNotRegistered
	}
	return s, nil
}

// Register creates a user named name and makes it the current user.
func (m *Manager) Register(ctx context.Context, registrar Registrar, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrEmptyName
	}

	user, err := registrar.RegisterUser(ctx, name)
	if err != nil {
		m.log.Error("failed to register user", "name", name, "error", err)
		return Session{}, fmt.Errorf("failed to register user: %w", err)
	}

	s := Session{UserID: user.ID, UserName: user.Name}
	if s.UserName == "" {
		s.UserName = name
	}
	if err := m.save(ctx, s); err != nil {
		return Session{}, err
	}
	m.log.Info("user registered", "user_id", s.UserID)
	return s, nil
}

// SetLastDraft records id as the document being created.
func (m *Manager) SetLastDraft(ctx context.Context, id string) error {
	s := m.Current()
	s.LastDraftID = id
	return m.save(ctx, s)
}

// ClearLastDraft forgets the interrupted draft.
func (m *Manager) ClearLastDraft(ctx context.Context) error {
	s := m.Current()
	if s.LastDraftID == "" {
		return nil
	}
	s.LastDraftID = ""
	return m.save(ctx, s)
}

// Reset removes the session entirely.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.backend.Delete(ctx); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()
	return nil
}

// ResumeDraft fetches the interrupted draft. When the service no longer has it the
// recorded id is cleared and ErrNoDraft is returned; on any other failure the id is
// kept so a later attempt can succeed.
func (m *Manager) ResumeDraft(ctx context.Context, getter DocumentGetter) (*types.CV, error) {
	id := m.Current().LastDraftID
	if id == "" {
		return nil, ErrNoDraft
	}

	doc, err := getter.GetCV(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			m.log.Warn("interrupted draft no longer exists", "cv_id", id)
			if clearErr := m.ClearLastDraft(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, fmt.Errorf("%w: draft %s no longer exists", ErrNoDraft, id)
		}
		m.log.Error("failed to fetch interrupted draft", "cv_id", id, "error", err)
		return nil, fmt.Errorf("failed to resume draft %s: %w", id, err)
	}
	return doc, nil
}

func (m *Manager) save(ctx context.Context, s Session) error {
	if err := m.backend.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}
