// Package autosave turns a burst of document edits into an ordered, low-frequency
// stream of remote writes.
//
// Each document id is debounced independently: a write is dispatched only after a
// quiet period with no further Notify calls, at most one write per id is in flight,
// and an edit that arrives while a write is in flight is sent once that write
// resolves. A failed write is reported and otherwise forgotten; the next quiet
// period sends whatever the document looks like then.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/types"
)

var (
	// ErrNoDocumentID is returned by Notify for documents the server has not created yet.
	ErrNoDocumentID = errors.New("document has no id yet")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("autosave coordinator is closed")
)

// Saver performs the remote write.
type Saver interface {
	UpdateCV(ctx context.Context, id string, doc types.CV) (*types.CV, error)
}

// Options configures a Coordinator.
type Options struct {
	// Delay is the quiet period after the last Notify before a write is sent.
	Delay time.Duration
	// Timeout bounds a single write. Zero leaves it to the Saver.
	Timeout time.Duration
	Clock   Clock
	Logger  *logger.Logger
	// OnSaved is called after every successful write with the accepted document.
	OnSaved func(saved types.CV)
	// OnError is called after every failed write.
	OnError func(id string, err error)
}

// Status is a snapshot of the autosave state of one document.
type Status struct {
	Pending     bool
	InFlight    bool
	LastError   error
	LastSavedAt time.Time
}

type entry struct {
	timer            Timer
	gen              uint64
	pending          *types.CV
	inFlight         bool
	dispatchWhenIdle bool // the quiet period ended during a write
	flushRequested   bool
	lastErr          error
	lastSaved        time.Time
	changed          chan struct{}
}

func (e *entry) signal() {
	close(e.changed)
	e.changed = make(chan struct{})
}

// Coordinator debounces and serializes autosave writes per document id.
type Coordinator struct {
	saver Saver
	opts  Options
	clock Clock
	log   *logger.Logger

	mu     sync.Mutex
	docs   map[string]*entry
	closed bool
}

// New creates a coordinator writing through saver.
func New(saver Saver, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	return &Coordinator{
		saver: saver,
		opts:  opts,
		clock: opts.Clock,
		log:   logger.OrNop(opts.Logger),
		docs:  make(map[string]*entry),
	}
}

// Notify records doc as the latest state of its document and restarts the quiet period.
func (c *Coordinator) Notify(doc types.CV) error {
	if doc.ID == "" {
		return ErrNoDocumentID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	e := c.entryLocked(doc.ID)
	if e.pending != nil {
		coalescedTotal.Inc()
	}
	snapshot := doc.Clone()
	e.pending = &snapshot

	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	e.dispatchWhenIdle = false
	gen := e.gen
	id := doc.ID
	e.timer = c.clock.AfterFunc(c.opts.Delay, func() { c.fire(id, gen) })
	return nil
}

// Status reports the autosave state of id.
func (c *Coordinator) Status(id string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.docs[id]
	if !ok {
		return Status{}
	}
	return Status{
		Pending:     e.pending != nil,
		InFlight:    e.inFlight,
		LastError:   e.lastErr,
		LastSavedAt: e.lastSaved,
	}
}

// Flush sends the pending state of id without waiting for the quiet period and
// blocks until no write for id is pending or in flight. It returns the error of
// the last write, if any.
func (c *Coordinator) Flush(ctx context.Context, id string) error {
	c.mu.Lock()
	e, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return nil
	}

	if e.pending != nil && !c.closed {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.gen++
		if e.inFlight {
			e.flushRequested = true
		} else {
			c.dispatchLocked(id, e)
		}
	}

	for e.inFlight || (e.pending != nil && !c.closed) {
		ch := e.changed
		c.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	err := e.lastErr
	c.mu.Unlock()
	return err
}

// Close stops all timers and drops pending edits. Writes already in flight run to
// completion but their results are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, e := range c.docs {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.pending = nil
		e.signal()
	}
}

func (c *Coordinator) entryLocked(id string) *entry {
	e, ok := c.docs[id]
	if !ok {
		e = &entry{changed: make(chan struct{})}
		c.docs[id] = e
	}
	return e
}

func (c *Coordinator) fire(id string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.docs[id]
	if !ok || c.closed || e.gen != gen || e.pending == nil {
		return
	}
	e.timer = nil
	if e.inFlight {
		e.dispatchWhenIdle = true
		return
	}
	c.dispatchLocked(id, e)
}

func (c *Coordinator) dispatchLocked(id string, e *entry) {
	doc := *e.pending
	e.pending = nil
	e.inFlight = true
	e.dispatchWhenIdle = false
	e.flushRequested = false
	go c.write(id, e, doc)
}

func (c *Coordinator) write(id string, e *entry, doc types.CV) {
	ctx := context.Background()
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := c.clock.Now()
	saved, err := c.saver.UpdateCV(ctx, id, doc)
	writeDuration.Observe(c.clock.Now().Sub(start).Seconds())

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if err != nil {
		writesTotal.WithLabelValues("error").Inc()
		c.log.Error("autosave failed", "cv_id", id, "error", err)
		if !closed && c.opts.OnError != nil {
			c.opts.OnError(id, err)
		}
	} else {
		writesTotal.WithLabelValues("success").Inc()
		c.log.Debug("autosave succeeded", "cv_id", id)
		if saved == nil {
			saved = &doc
		}
		if !closed && c.opts.OnSaved != nil {
			c.opts.OnSaved(*saved)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e.inFlight = false
	if err != nil {
		e.lastErr = err
	} else {
		e.lastErr = nil
		e.lastSaved = c.clock.Now()
	}
	if !c.closed && (e.dispatchWhenIdle || e.flushRequested) && e.pending != nil {
		c.dispatchLocked(id, e)
	}
	e.dispatchWhenIdle, e.flushRequested = false, false
	e.signal()
}
