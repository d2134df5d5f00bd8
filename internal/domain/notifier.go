package domain

import (
	"log/slog"
	"sync"
)

// DispatchMode selects how a hook notification is delivered.
type DispatchMode int

const (
	// DispatchAsync queues the hook and returns immediately.
	DispatchAsync DispatchMode = iota
	// DispatchSync queues the hook and waits until it has run.
	DispatchSync
)

func (d DispatchMode) String() string {
	if d == DispatchSync {
		return "sync"
	}

	return "async"
}

// Notifier delivers hook calls in FIFO order from a single goroutine.
//
// Sync notifications wait for their own hook, and therefore for every hook
// queued before them.
type Notifier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	drained chan struct{}
}

// NewNotifier starts a notifier. Close must be called to release its goroutine.
func NewNotifier() *Notifier {
	n := &Notifier{drained: make(chan struct{})}
	n.cond = sync.NewCond(&n.mu)

	go n.loop()

	return n
}

// Notify delivers hook according to mode.
func (n *Notifier) Notify(mode DispatchMode, hook func()) {
	if mode == DispatchAsync {
		n.enqueue(hook)
		return
	}

	done := make(chan struct{})
	if !n.enqueue(func() {
		defer close(done)
		hook()
	}) {
		return
	}

	<-done
}

// Close waits for every queued hook to run and stops the dispatcher.
func (n *Notifier) Close() {
	n.mu.Lock()
	n.closed = true
	n.cond.Broadcast()
	n.mu.Unlock()

	<-n.drained
}

func (n *Notifier) enqueue(hook func()) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		slog.Warn("Dropping notification after notifier was closed")
		return false
	}

	n.pending = append(n.pending, hook)
	n.cond.Signal()

	return true
}

func (n *Notifier) loop() {
	defer close(n.drained)

	for {
		n.mu.Lock()
		for len(n.pending) == 0 && !n.closed {
			n.cond.Wait()
		}

		if len(n.pending) == 0 {
			n.mu.Unlock()
			return
		}

		batch := n.pending
		n.pending = nil
		n.mu.Unlock()

		for _, hook := range batch {
			runHook(hook)
		}
	}
}

func runHook(hook func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Printer hook panicked", "panic", r)
		}
	}()

	hook()
}
