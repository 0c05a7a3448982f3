package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity classifies a toast for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultToastDuration applies when a producer does not pick one.
const DefaultToastDuration = 5 * time.Second

// maxToasts bounds the queue under a rapid producer; the oldest item is
// evicted first.
const maxToasts = 100

// Toast is one transient user notification. Duration 0 means the toast
// stays until dismissed.
type Toast struct {
	ID       string
	Message  string
	Severity Severity
	Duration time.Duration
}

// NotificationQueue is an ordered, self-expiring toast queue. Ids are
// uuids, never positional, so a late timer can only ever dismiss the item
// it was armed for. Expiry timers and manual dismissal are mutually
// idempotent: whichever fires first wins and the other is a no-op.
type NotificationQueue struct {
	mu       sync.Mutex
	toasts   []Toast
	timers   map[string]*time.Timer
	onChange func()
	closed   bool
	log      *zap.Logger
}

func NewNotificationQueue(log *zap.Logger) *NotificationQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationQueue{
		timers: make(map[string]*time.Timer),
		log:    log,
	}
}

// SetListener installs a callback invoked after every queue change. The
// callback runs outside the queue lock and may arrive from a timer
// goroutine.
func (q *NotificationQueue) SetListener(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onChange = fn
}

// Snapshot returns the queue in display order (arrival order).
func (q *NotificationQueue) Snapshot() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Push appends a toast and arms its expiry timer. Returns the generated
// id so producers can dismiss early.
func (q *NotificationQueue) Push(message string, severity Severity, duration time.Duration) string {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ""
	}
	t := Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		Duration: duration,
	}
	q.toasts = append(q.toasts, t)
	for len(q.toasts) > maxToasts {
		evicted := q.toasts[0]
		q.toasts = q.toasts[1:]
		q.stopTimerLocked(evicted.ID)
	}
	if duration > 0 {
		id := t.ID
		q.timers[id] = time.AfterFunc(duration, func() { q.expire(id) })
	}
	fn := q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn()
	}
	return t.ID
}

// Success pushes a success toast with the default duration.
func (q *NotificationQueue) Success(message string) string {
	return q.Push(message, SeveritySuccess, DefaultToastDuration)
}

// Error pushes an error toast with the default duration.
func (q *NotificationQueue) Error(message string) string {
	return q.Push(message, SeverityError, DefaultToastDuration)
}

// Warning pushes a warning toast with the default duration.
func (q *NotificationQueue) Warning(message string) string {
	return q.Push(message, SeverityWarning, DefaultToastDuration)
}

// Info pushes an info toast with the default duration.
func (q *NotificationQueue) Info(message string) string {
	return q.Push(message, SeverityInfo, DefaultToastDuration)
}

// Dismiss removes the toast with the given id and cancels its timer.
// Idempotent when the id is already gone.
func (q *NotificationQueue) Dismiss(id string) {
	q.mu.Lock()
	removed := q.removeLocked(id)
	q.stopTimerLocked(id)
	fn := q.onChange
	q.mu.Unlock()

	if removed && fn != nil {
		fn()
	}
}

// Shutdown cancels every pending timer and drops the queue. Used when the
// host view is torn down; pushes after shutdown are no-ops.
func (q *NotificationQueue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.toasts = nil
}

// expire is the timer path; a no-op when the toast was dismissed first.
func (q *NotificationQueue) expire(id string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	removed := q.removeLocked(id)
	delete(q.timers, id)
	fn := q.onChange
	q.mu.Unlock()

	if removed && fn != nil {
		fn()
	}
}

func (q *NotificationQueue) removeLocked(id string) bool {
	for i := range q.toasts {
		if q.toasts[i].ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func (q *NotificationQueue) stopTimerLocked(id string) {
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
}
