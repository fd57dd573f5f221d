// Package autosave coordinates debounced saves of an editor buffer.
//
// A Coordinator moves through Idle, Dirty, Scheduled and Committing. Edits
// arm a debounce timer; when it fires the latest content is committed. At
// most one commit is in flight, so the server sees commits in edit order.
// A failed commit is not retried until the next edit or an explicit Flush.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce is the inactivity window before an automatic commit.
const DefaultDebounce = time.Second

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("autosave: closed")

// CommitFunc persists a full content snapshot.
type CommitFunc func(ctx context.Context, content string) error

// State is the coordinator state.
type State int

const (
	Idle State = iota
	Dirty
	Scheduled
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dirty:
		return "dirty"
	case Scheduled:
		return "scheduled"
	case Committing:
		return "committing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Status is reported to the OnStatus callback around each commit.
type Status int

const (
	Saving Status = iota
	Saved
	Failed
)

func (s Status) String() string {
	switch s {
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Options tune a Coordinator. Zero values select defaults.
type Options struct {
	Debounce time.Duration
	Log      *zap.Logger
	// OnStatus is called outside the coordinator lock and must not block.
	OnStatus func(Status, error)
}

// Coordinator debounces edits of one document into sequential commits.
type Coordinator struct {
	commit   CommitFunc
	debounce time.Duration
	log      *zap.Logger
	onStatus func(Status, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	content string // latest edit
	saved   string // last committed snapshot
	pending bool   // edit arrived while committing
	timer   *time.Timer
	gen     uint64        // invalidates timers armed before a reset
	running chan struct{} // closed when the in-flight commit resolves
	closed  bool
	lastErr error
}

// New returns an idle coordinator whose saved content is initial.
func New(initial string, commit CommitFunc, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		commit:   commit,
		debounce: opts.Debounce,
		log:      opts.Log,
		onStatus: opts.OnStatus,
		ctx:      ctx,
		cancel:   cancel,
		content:  initial,
		saved:    initial,
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the most recent commit, nil after a success.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Content returns the latest edited content.
func (c *Coordinator) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// Edit records new full content. It never blocks on I/O.
func (c *Coordinator) Edit(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.content = content
	if c.state == Committing {
		c.pending = true
		return
	}
	c.state = Dirty
	c.arm()
}

// arm (re)starts the debounce timer. Caller holds mu.
func (c *Coordinator) arm() {
	c.disarm()
	g := c.gen
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(g) })
	c.state = Scheduled
}

// disarm stops the timer and invalidates any callback already running.
func (c *Coordinator) disarm() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) fire(g uint64) {
	c.mu.Lock()
	if c.closed || g != c.gen || c.state != Scheduled {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	_ = c.run(c.ctx)
}

// run commits the current content. Caller holds mu; run releases it.
func (c *Coordinator) run(ctx context.Context) error {
	if c.content == c.saved {
		c.state = Idle
		c.mu.Unlock()
		return nil
	}
	snapshot := c.content
	done := make(chan struct{})
	c.state, c.pending, c.running = Committing, false, done
	c.mu.Unlock()

	c.notify(Saving, nil)
	err := c.commit(ctx, snapshot)

	c.mu.Lock()
	c.running = nil
	close(done)
	if err != nil {
		c.lastErr = err
		c.state = Dirty
		c.log.Warn("autosave commit failed", zap.Int("bytes", len(snapshot)), zap.Error(err))
	} else {
		c.lastErr = nil
		c.saved = snapshot
		c.state = Idle
		if c.content != c.saved {
			c.state = Dirty
		}
	}
	if c.pending && !c.closed {
		c.pending = false
		c.state = Dirty
		c.arm()
	}
	c.mu.Unlock()

	if err != nil {
		c.notify(Failed, err)
	} else {
		c.notify(Saved, nil)
	}
	return err
}

// Flush commits the latest content now, waiting for an in-flight commit
// first. It returns the commit error, if any.
func (c *Coordinator) Flush(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if done := c.running; done != nil {
			c.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		c.disarm()
		return c.run(ctx)
	}
}

// Close flushes pending content and stops the coordinator. Later edits are
// ignored.
func (c *Coordinator) Close(ctx context.Context) error {
	err := c.Flush(ctx)
	if errors.Is(err, ErrClosed) {
		return nil
	}
	c.mu.Lock()
	c.closed = true
	c.disarm()
	c.mu.Unlock()
	c.cancel()
	return err
}

func (c *Coordinator) notify(s Status, err error) {
	if c.onStatus != nil {
		c.onStatus(s, err)
	}
}
