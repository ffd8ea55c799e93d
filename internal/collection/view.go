// Package collection lists a user's CVs and deletes them.
package collection

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonathan/cv-editor/internal/confirm"
	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/types"
)

// DeleteQuestion is asked before a document is deleted.
const DeleteQuestion = "Delete this CV? This cannot be undone."

// Source is the remote side of the collection.
type Source interface {
	ListCVs(ctx context.Context, userID string) ([]types.CV, error)
	DeleteCV(ctx context.Context, id string) error
}

// View is the cached list of one user's documents.
type View struct {
	source Source
	userID string
	log    *logger.Logger

	mu    sync.Mutex
	items []types.Summary
	stale bool
}

// NewView creates an empty, stale view.
func NewView(source Source, userID string, log *logger.Logger) *View {
	return &View{source: source, userID: userID, log: logger.OrNop(log), stale: true}
}

// Load fetches the documents, replacing the cached list.
func (v *View) Load(ctx context.Context) error {
	docs, err := v.source.ListCVs(ctx, v.userID)
	if err != nil {
		v.log.Error("failed to list cvs", "user_id", v.userID, "error", err)
		return fmt.Errorf("failed to load CVs: %w", err)
	}

	items := make([]types.Summary, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Summary())
	}

	v.mu.Lock()
	v.items = items
	v.stale = false
	v.mu.Unlock()
	return nil
}

// List returns the summaries in service order, loading first when stale.
func (v *View) List(ctx context.Context) ([]types.Summary, error) {
	v.mu.Lock()
	stale := v.stale
	v.mu.Unlock()

	if stale {
		if err := v.Load(ctx); err != nil {
			return nil, err
		}
	}
	return v.Items(), nil
}

// Items returns the cached summaries in service order.
func (v *View) Items() []types.Summary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]types.Summary(nil), v.items...)
}

// Recent returns the cached summaries, most recently modified first.
func (v *View) Recent() []types.Summary {
	items := v.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastModified.After(items[j].LastModified)
	})
	return items
}

// Invalidate marks the cache stale so the next List refetches.
func (v *View) Invalidate() {
	v.mu.Lock()
	v.stale = true
	v.mu.Unlock()
}

// Delete asks for confirmation, deletes the document remotely and, only once the
// service has confirmed, drops it from the cached list. It reports whether the
// document was deleted; declining is not an error.
func (v *View) Delete(ctx context.Context, id string, confirmer confirm.Confirmer) (bool, error) {
	if confirmer != nil {
		ok, err := confirmer.Confirm(ctx, DeleteQuestion)
		if err != nil {
			return false, fmt.Errorf("failed to confirm deletion: %w", err)
		}
		if !ok {
			return false, nil
		}
	}

	if err := v.source.DeleteCV(ctx, id); err != nil {
		v.log.Error("failed to delete cv", "cv_id", id, "error", err)
		return false, fmt.Errorf("failed to delete CV %s: %w", id, err)
	}

	v.mu.Lock()
	kept := v.items[:0:0]
	for _, item := range v.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	v.items = kept
	v.mu.Unlock()

	v.log.Info("cv deleted", "cv_id", id)
	return true, nil
}
