package tracking

import (
	"context"
	"sync"
)

// Watch is a handle over one tracked order. Updates are delivered on
// Updates(); the channel closes when tracking ends, whether by terminal
// status, Stop or context cancellation.
type Watch struct {
	updates chan StatusUpdate
	stop    chan struct{}
	once    sync.Once
}

func newWatch() *Watch {
	return &Watch{
		updates: make(chan StatusUpdate, 1),
		stop:    make(chan struct{}),
	}
}

// Updates returns the status stream.
func (w *Watch) Updates() <-chan StatusUpdate {
	return w.updates
}

// Stop cancels the watch. Any scheduled poll is dropped and no update
// is delivered afterwards. Safe to call more than once.
func (w *Watch) Stop() {
	w.once.Do(func() {
		close(w.stop)
	})
}

// send delivers an update unless the watch is being torn down. It
// reports whether the polling loop should continue.
func (w *Watch) send(ctx context.Context, update StatusUpdate) bool {
	select {
	case w.updates <- update:
		return true
	case <-w.stop:
		return false
	case <-ctx.Done():
		return false
	}
}
