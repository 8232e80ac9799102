// Package mvi implements the per-screen state/event coordinator: a single
// owner of current UI state, a single latest one-shot event, and a registry
// of named, cancellable background tasks. Screens construct one coordinator
// per activation and close it on teardown.
package mvi

import (
	"context"
	"sync"

	"github.com/kalev/gymdesk/internal/logging"
)

// Scheduler selects where a task body runs.
type Scheduler int

const (
	// BackgroundPool runs the task on its own goroutine. This is the
	// default when callers have no affinity requirement.
	BackgroundPool Scheduler = iota
	// MainDispatcher runs the task on the coordinator's single serialized
	// dispatcher goroutine, in FIFO order. Tasks scheduled here never run
	// concurrently with each other.
	MainDispatcher
)

const initialStateTag = "initial state"

// launchTag is the log tag for task-launch usage errors.
const launchTag = "launch coroutine"

type options struct {
	skipInit bool
	log      *logging.Logger
}

// Option configures a coordinator at construction.
type Option func(*options)

// WithoutInitialState suppresses the automatic initial-state task.
func WithoutInitialState() Option {
	return func(o *options) { o.skipInit = true }
}

// WithLogger replaces the coordinator's logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

type namedTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type mainEntry struct {
	run   func()
	abort func()
}

// Coordinator owns one screen's state cell, event cell and task registry.
// The cells are private to the instance; nothing is shared across
// coordinators.
type Coordinator[S, E any] struct {
	log *logging.Logger

	mu       sync.Mutex
	state    S
	hasState bool
	event    E
	hasEvent bool
	closed   bool
	tasks    map[string]*namedTask

	changes chan struct{}
	events  chan E

	rootCtx  context.Context
	rootStop context.CancelFunc
	wg       sync.WaitGroup

	mainMu      sync.Mutex
	mainQ       []mainEntry
	mainStopped bool
	mainKick    chan struct{}
	mainDone    chan struct{}
}

// New constructs a coordinator and, unless opted out, immediately runs
// initial as a named task on the main dispatcher; its result is written
// with the plain overwrite path. Because the dispatcher is FIFO, a
// MainDispatcher task scheduled right after New is guaranteed to observe
// the initialized state cell.
func New[S, E any](initial func(context.Context) S, opts ...Option) *Coordinator[S, E] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.New[S]()
	}

	ctx, stop := context.WithCancel(context.Background())
	c := &Coordinator[S, E]{
		log:      o.log,
		tasks:    make(map[string]*namedTask),
		changes:  make(chan struct{}, 1),
		events:   make(chan E, 1),
		rootCtx:  ctx,
		rootStop: stop,
		mainKick: make(chan struct{}, 1),
		mainDone: make(chan struct{}),
	}
	go c.runMain()

	if initial != nil && !o.skipInit {
		c.RunTask(initialStateTag, MainDispatcher, func(ctx context.Context) {
			c.SetState(initial(ctx))
		})
	}
	return c
}

// runMain drains the FIFO main queue. On teardown the queued entries are
// aborted: deregistered without running their work.
func (c *Coordinator[S, E]) runMain() {
	defer close(c.mainDone)
	for {
		select {
		case <-c.mainKick:
			for {
				c.mainMu.Lock()
				if len(c.mainQ) == 0 {
					c.mainMu.Unlock()
					break
				}
				e := c.mainQ[0]
				c.mainQ = c.mainQ[1:]
				c.mainMu.Unlock()
				e.run()
			}
		case <-c.rootCtx.Done():
			c.mainMu.Lock()
			c.mainStopped = true
			q := c.mainQ
			c.mainQ = nil
			c.mainMu.Unlock()
			for _, e := range q {
				e.abort()
			}
			return
		}
	}
}

func (c *Coordinator[S, E]) enqueueMain(e mainEntry) bool {
	c.mainMu.Lock()
	if c.mainStopped {
		c.mainMu.Unlock()
		return false
	}
	c.mainQ = append(c.mainQ, e)
	c.mainMu.Unlock()
	select {
	case c.mainKick <- struct{}{}:
	default:
	}
	return true
}

// CurrentState returns the last written state, or ok=false before the
// first write and after Close.
func (c *Coordinator[S, E]) CurrentState() (S, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.hasState
}

// CurrentEvent returns the latest emitted event without clearing it.
func (c *Coordinator[S, E]) CurrentEvent() (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.event, c.hasEvent
}

// SetState unconditionally overwrites the state cell.
func (c *Coordinator[S, E]) SetState(s S) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = s
	c.hasState = true
	c.notifyLocked()
}

// MutateState replaces the state with transform(current). It is a no-op
// until the state cell has been initialized. transform runs under the
// coordinator's lock and must not call back into the coordinator.
func (c *Coordinator[S, E]) MutateState(transform func(S) S) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.hasState {
		return
	}
	c.state = transform(c.state)
	c.notifyLocked()
}

func (c *Coordinator[S, E]) notifyLocked() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// EmitEvent publishes a one-shot event. The latest-event cell always takes
// the new value; delivery on the Events channel is best-effort and a full
// channel drops the send rather than blocking.
func (c *Coordinator[S, E]) EmitEvent(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.event = e
	c.hasEvent = true
	select {
	case c.events <- e:
	default:
	}
}

// Changes is a coalescing wake-up channel: at most one pending signal, set
// whenever the state cell is written. Closed on Close.
func (c *Coordinator[S, E]) Changes() <-chan struct{} { return c.changes }

// Events carries emitted events with latest-wins semantics. Closed on Close.
func (c *Coordinator[S, E]) Events() <-chan E { return c.events }

// RunTask registers work under tag and starts it asynchronously. At most
// one live task exists per tag: an existing task under the same tag is
// cancelled before the new one is registered, so the newest caller always
// wins. An empty tag is a usage error: it is logged and work never runs.
// Cancellation is cooperative; work must watch ctx.
func (c *Coordinator[S, E]) RunTask(tag string, on Scheduler, work func(context.Context)) {
	if tag == "" {
		c.log.Error(launchTag, "empty task tag, work not started")
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Error(launchTag, "coordinator closed, task not started: "+tag)
		return
	}
	if prev, ok := c.tasks[tag]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(c.rootCtx)
	t := &namedTask{cancel: cancel, done: make(chan struct{})}
	c.tasks[tag] = t
	c.wg.Add(1)
	c.mu.Unlock()

	run := func() {
		defer c.finish(tag, t)
		if ctx.Err() != nil {
			return
		}
		work(ctx)
	}

	switch on {
	case MainDispatcher:
		if !c.enqueueMain(mainEntry{run: run, abort: func() { c.finish(tag, t) }}) {
			c.finish(tag, t)
		}
	default:
		go run()
	}
}

func (c *Coordinator[S, E]) finish(tag string, t *namedTask) {
	t.cancel()
	close(t.done)
	c.mu.Lock()
	if c.tasks[tag] == t {
		delete(c.tasks, tag)
	}
	c.mu.Unlock()
	c.wg.Done()
}

// CancelTask cancels and forgets the task registered under tag, if any.
func (c *Coordinator[S, E]) CancelTask(tag string) {
	c.mu.Lock()
	t, ok := c.tasks[tag]
	if ok {
		delete(c.tasks, tag)
	}
	c.mu.Unlock()
	if ok {
		t.cancel()
	}
}

// HasTask reports whether a live task is registered under tag.
func (c *Coordinator[S, E]) HasTask(tag string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tasks[tag]
	return ok
}

// Close cancels every registered task, waits for task bodies and the
// dispatcher to return, then releases the cells and closes the Changes
// and Events channels. State/event writes that race with teardown are
// discarded. Idempotent.
func (c *Coordinator[S, E]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	live := make([]*namedTask, 0, len(c.tasks))
	for _, t := range c.tasks {
		live = append(live, t)
	}
	c.mu.Unlock()

	for _, t := range live {
		t.cancel()
	}
	c.rootStop()
	c.wg.Wait()
	<-c.mainDone

	c.mu.Lock()
	var zeroS S
	var zeroE E
	c.state = zeroS
	c.event = zeroE
	c.hasState = false
	c.hasEvent = false
	c.tasks = nil
	close(c.changes)
	close(c.events)
	c.mu.Unlock()
}
