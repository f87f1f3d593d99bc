package notify

import (
	"context"
	"sync"
)

// Recorder keeps notifications per user until they are drained, so an HTTP
// response can carry the messages produced while serving it.
type Recorder struct {
	mu      sync.Mutex
	pending map[string][]Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{pending: make(map[string][]Notification)}
}

// Notify implements Sink.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[n.UserID] = append(r.pending[n.UserID], n)
}

// Drain returns and forgets the notifications of userID.
func (r *Recorder) Drain(userID string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.pending[userID]
	delete(r.pending, userID)
	if list == nil {
		return []Notification{}
	}
	return list
}
