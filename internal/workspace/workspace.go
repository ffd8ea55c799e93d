// Package workspace wires one editing session together: the document state and its
// reducer, the phrase panel, the autosave coordinator and the submission flow.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/cv-editor/internal/autosave"
	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/editor"
	"github.com/jonathan/cv-editor/internal/export"
	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/session"
	"github.com/jonathan/cv-editor/internal/suggest"
	"github.com/jonathan/cv-editor/internal/types"
)

var (
	// ErrEmptyTitle is returned when creating a document without a title.
	ErrEmptyTitle = errors.New("a title is required to create a CV")
	// ErrNoCatalog is returned by phrase operations when no catalog is configured.
	ErrNoCatalog = errors.New("phrase suggestions are not available")
	// ErrNoRole is returned when toggling a phrase before a role is selected.
	ErrNoRole = errors.New("select a role first")
)

// Store is the part of the remote service an editing session needs.
type Store interface {
	AddCV(ctx context.Context, userID, title string) (*types.CV, error)
	GetCV(ctx context.Context, id string) (*types.CV, error)
	autosave.Saver
}

// Submitter runs the submission flow for a finished document. Prepare holds the
// local checks and the confirmation; Generate does the network part.
type Submitter interface {
	Prepare(ctx context.Context, doc types.CV) error
	Generate(ctx context.Context, doc types.CV) (*export.Result, error)
}

// Deps are the collaborators of a Session. Sessions and Catalog are optional.
type Deps struct {
	Store    Store
	Sessions *session.Manager
	Catalog  *suggest.Catalog
	Clock    autosave.Clock
	Logger   *logger.Logger
	// OnSaved is called after every successful autosave write.
	OnSaved func(saved types.CV)
	// Delays override the autosave quiet periods; zero uses the config defaults.
	CreateDelay time.Duration
	EditDelay   time.Duration
}

// Session is an open document being edited.
type Session struct {
	deps  Deps
	log   *logger.Logger
	coord *autosave.Coordinator
	panel *suggest.Panel

	mu    sync.Mutex
	state editor.State
}

// Create asks the service for a new document titled title, records it as the
// interrupted draft and opens it with the drafting autosave delay.
func Create(ctx context.Context, deps Deps, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	var userID string
	if deps.Sessions != nil {
		s, err := deps.Sessions.RequireUser()
		if err != nil {
			return nil, err
		}
		userID = s.UserID
	}

	doc, err := deps.Store.AddCV(ctx, userID, title)
	if err != nil {
		logger.OrNop(deps.Logger).Error("failed to create cv", "title", title, "error", err)
		return nil, fmt.Errorf("failed to create CV: %w", err)
	}

	if deps.Sessions != nil {
		if err := deps.Sessions.SetLastDraft(ctx, doc.ID); err != nil {
			logger.OrNop(deps.Logger).Warn("failed to record draft", "cv_id", doc.ID, "error", err)
		}
	}

	delay := deps.CreateDelay
	if delay <= 0 {
		delay = config.AutosaveCreateDelay
	}
	return open(deps, *doc, delay), nil
}

// Open loads document id for revision with the editing autosave delay.
func Open(ctx context.Context, deps Deps, id string) (*Session, error) {
	doc, err := deps.Store.GetCV(ctx, id)
	if err != nil {
		logger.OrNop(deps.Logger).Error("failed to load cv", "cv_id", id, "error", err)
		return nil, fmt.Errorf("failed to load CV %s: %w", id, err)
	}

	delay := deps.EditDelay
	if delay <= 0 {
		delay = config.AutosaveEditDelay
	}
	return open(deps, *doc, delay), nil
}

// ResumeDraft reopens the document whose creation was interrupted.
func ResumeDraft(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Sessions == nil {
		return nil, session.ErrNoDraft
	}
	doc, err := deps.Sessions.ResumeDraft(ctx, deps.Store)
	if err != nil {
		return nil, err
	}

	delay := deps.CreateDelay
	if delay <= 0 {
		delay = config.AutosaveCreateDelay
	}
	return open(deps, *doc, delay), nil
}

func open(deps Deps, doc types.CV, delay time.Duration) *Session {
	doc.Normalize()
	s := &Session{
		deps:  deps,
		log:   logger.OrNop(deps.Logger).With("cv_id", doc.ID),
		state: editor.NewState(doc),
	}
	if deps.Catalog != nil {
		s.panel = suggest.NewPanel(deps.Catalog)
		s.panel.Reconcile(doc.Objective)
	}
	s.coord = autosave.New(deps.Store, autosave.Options{
		Delay:   delay,
		Clock:   deps.Clock,
		Logger:  deps.Logger,
		OnSaved: s.saved,
		OnError: func(id string, err error) {
			s.log.Warn("autosave failed; will retry after the next edit", "error", err)
		},
	})
	return s
}

func (s *Session) saved(doc types.CV) {
	s.mu.Lock()
	if doc.ID == s.state.Document.ID && !doc.UpdatedAt.IsZero() {
		s.state.Document.UpdatedAt = doc.UpdatedAt
	}
	s.mu.Unlock()

	if s.deps.OnSaved != nil {
		s.deps.OnSaved(doc)
	}
}

// ID returns the document id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Document.ID
}

// State returns the current editor state.
func (s *Session) State() editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns a copy of the current document.
func (s *Session) Document() types.CV {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Document.Clone()
}

// Apply runs in through the reducer and schedules an autosave when the document changed.
func (s *Session) Apply(in editor.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(in)
}

func (s *Session) applyLocked(in editor.Intent) error {
	next, err := editor.Apply(s.state, in)
	if err != nil {
		return err
	}
	s.state = next
	if !editor.ChangesDocument(in) {
		return nil
	}
	if err := s.coord.Notify(next.Document); err != nil {
		return fmt.Errorf("failed to schedule autosave: %w", err)
	}
	return nil
}

// Roles lists the roles offered by the phrase catalog.
func (s *Session) Roles(ctx context.Context) ([]string, error) {
	if s.panel == nil {
		return nil, ErrNoCatalog
	}
	return s.panel.Roles(ctx)
}

// SelectRole makes role current in the phrase panel and returns its phrases.
func (s *Session) SelectRole(ctx context.Context, role string) ([]string, error) {
	if s.panel == nil {
		return nil, ErrNoCatalog
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel.SelectRole(ctx, role)
}

// Phrases returns the current role, its phrases, and which of them are selected.
func (s *Session) Phrases() (string, []string, func(string) bool) {
	if s.panel == nil {
		return "", nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := s.panel.Selected()
	return s.panel.Role(), s.panel.Phrases(), func(p string) bool {
		for _, sel := range selected {
			if sel == p {
				return true
			}
		}
		return false
	}
}

// TogglePhrase adds phrase to the objective or removes it, and reports whether it
// is now part of the objective.
func (s *Session) TogglePhrase(phrase string) (bool, error) {
	if s.panel == nil {
		return false, ErrNoCatalog
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel.Role() == "" {
		return false, ErrNoRole
	}

	objective, selected := s.panel.Toggle(s.state.Document.Objective, phrase)
	if err := s.applyLocked(editor.SetObjective{HTML: objective}); err != nil {
		return false, err
	}
	return selected, nil
}

// Status reports the autosave state of the document.
func (s *Session) Status() autosave.Status {
	return s.coord.Status(s.ID())
}

// Save sends pending edits now and waits for the write.
func (s *Session) Save(ctx context.Context) error {
	return s.coord.Flush(ctx, s.ID())
}

// Submit checks and confirms the document, then saves pending edits and runs
// generation. A rejected or declined submission sends nothing. On success the
// interrupted-draft marker for this document is cleared.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (*export.Result, error) {
	doc := s.Document()
	if err := submitter.Prepare(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.Save(ctx); err != nil {
		s.log.Warn("autosave before submit failed; submitting current state", "error", err)
	}

	res, err := submitter.Generate(ctx, doc)
	if err != nil {
		return nil, err
	}

	if s.deps.Sessions != nil && s.deps.Sessions.Current().LastDraftID == doc.ID {
		if err := s.deps.Sessions.ClearLastDraft(ctx); err != nil {
			s.log.Warn("failed to clear draft marker", "error", err)
		}
	}
	return res, nil
}

// Close sends pending edits (best effort) and stops autosave.
func (s *Session) Close(ctx context.Context) error {
	err := s.Save(ctx)
	s.coord.Close()
	if err != nil {
		return fmt.Errorf("failed to save pending edits: %w", err)
	}
	return nil
}
