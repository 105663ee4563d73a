// Package notify holds the single notification slot shown to the user.
//
// A new notification replaces the visible one and restarts the auto-hide
// timer. There is never more than one timer, and a timer that belongs to a
// replaced notification cannot hide its successor.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3000 * time.Millisecond

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is the content of the slot. ID increases with every Notify
// so observers can tell a re-shown message from the previous one.
type Notification struct {
	ID      uint64 `json:"id"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
	Visible bool   `json:"visible"`
}

// Queue is the single-slot, auto-expiring notification surface.
//
// pubMu is held across each state change and its delivery, so observers see
// changes in the order they were made and never see a notification after
// its successor. Lock order is pubMu then mu.
type Queue struct {
	pubMu sync.Mutex

	mu        sync.Mutex
	ttl       time.Duration
	current   Notification
	timer     *time.Timer
	observers map[int]func(Notification)
	nextObs   int
}

// NewQueue returns an empty queue. A ttl <= 0 means DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, observers: make(map[int]func(Notification))}
}

// Notify shows msg at LevelSuccess.
func (q *Queue) Notify(msg string) {
	q.NotifyLevel(LevelSuccess, msg)
}

// NotifyLevel shows msg, replacing whatever was visible.
func (q *Queue) NotifyLevel(level Level, msg string) {
	q.pubMu.Lock()
	defer q.pubMu.Unlock()

	q.mu.Lock()
	q.stopTimer()
	n := Notification{ID: q.current.ID + 1, Message: msg, Level: level, Visible: true}
	q.current = n
	q.timer = time.AfterFunc(q.ttl, func() { q.expire(n.ID) })
	obs := q.snapshotObservers()
	q.mu.Unlock()

	publish(obs, n)
}

// Dismiss hides the visible notification now and cancels its timer.
func (q *Queue) Dismiss() {
	q.hide(0)
}

// Current returns the slot's content; Visible is false once hidden.
func (q *Queue) Current() Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Subscribe registers fn for every show and hide. fn runs on the goroutine
// that caused the change, one change at a time, and must not call back into
// the queue synchronously. A slow fn delays the next change.
func (q *Queue) Subscribe(fn func(Notification)) (cancel func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextObs
	q.nextObs++
	q.observers[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.observers, id)
	}
}

func (q *Queue) expire(id uint64) {
	q.hide(id)
}

// hide clears the slot. A non-zero id only hides that notification, so a
// stale timer that fires after a newer Notify does nothing.
func (q *Queue) hide(id uint64) {
	q.pubMu.Lock()
	defer q.pubMu.Unlock()

	q.mu.Lock()
	if !q.current.Visible || (id != 0 && q.current.ID != id) {
		q.mu.Unlock()
		return
	}
	q.stopTimer()
	q.current.Visible = false
	n := q.current
	obs := q.snapshotObservers()
	q.mu.Unlock()

	publish(obs, n)
}

// stopTimer must be called with q.mu held.
func (q *Queue) stopTimer() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// snapshotObservers must be called with q.mu held.
func (q *Queue) snapshotObservers() []func(Notification) {
	obs := make([]func(Notification), 0, len(q.observers))
	for _, fn := range q.observers {
		obs = append(obs, fn)
	}
	return obs
}

func publish(obs []func(Notification), n Notification) {
	for _, fn := range obs {
		fn(n)
	}
}
