package store

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Wildcard is the reserved key for listeners that observe every change.
// [Store.Set] refuses it as a state key.
const Wildcard = "*"

// DefaultMaxHistory is the number of change records kept when
// [WithMaxHistory] is not given.
const DefaultMaxHistory = 10

// ErrMaxDepthExceeded is raised (as a panic value) when nested notification
// exceeds the depth configured with [WithMaxDepth].
var ErrMaxDepthExceeded = errors.New("store: notification depth exceeded")

// Listener is called after a key changes.
//
// value is the new value, previous is the value before the change (nil if
// the key was absent), and key is the key that changed. Wildcard listeners
// receive the real key, never [Wildcard].
type Listener func(value, previous any, key string)

// Entry is a single key/value pair applied by [Store.SetMany].
type Entry struct {
	Key   string
	Value any
}

// Option configures a [Store] during construction.
type Option func(*Store)

// WithMaxHistory sets how many change records are retained.
// Values below 1 are ignored.
func WithMaxHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// WithLogger sets the logger used to report recovered listener panics.
// A nil logger is ignored and [slog.Default] is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxDepth enables the recursion-depth assertion.
//
// When a chain of listeners that call [Store.Set] nests deeper than n, the
// innermost Set panics with [ErrMaxDepthExceeded]. The panic is recovered by
// the listener boundary one level up and logged, which stops a listener that
// unconditionally re-sets the key it observes. Zero (the default) disables
// the check.
//
// The depth count is shared by the whole store, so the check assumes every
// Set runs on one goroutine, as it does behind the event loop. Concurrent
// Set calls from several goroutines add up and can trip it falsely.
func WithMaxDepth(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithPanicHook registers a function called after a listener panic has been
// recovered and logged. It is used to feed metrics.
func WithPanicHook(fn func(key string, recovered any)) Option {
	return func(s *Store) {
		s.onPanic = fn
	}
}

type subscription struct {
	id uint64
	fn Listener
}

// Store is an observable key-value map with bounded change history.
//
// Create one with [New]. All methods are safe to call from any goroutine,
// and from inside listeners. [WithMaxDepth] is the exception: it expects a
// single writer goroutine.
type Store struct {
	mu        sync.RWMutex
	state     map[string]any
	listeners map[string][]subscription
	history   *ring
	nextID    uint64

	maxHistory int
	maxDepth   int
	depth      atomic.Int32
	logger     *slog.Logger
	now        func() time.Time
	onPanic    func(key string, recovered any)
}

// New creates a [Store] seeded with a copy of initial.
//
// A nil initial map yields an empty store.
func New(initial map[string]any, opts ...Option) *Store {
	s := &Store{
		listeners:  make(map[string][]subscription),
		maxHistory: DefaultMaxHistory,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = copyState(initial)
	s.history = newRing(s.maxHistory)
	return s
}

// Get returns the current value for key.
// The second result is false if the key has never been set.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// Snapshot returns a shallow copy of the entire state.
//
// Mutating the returned map does not affect the store, and the copy does not
// reflect later changes.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Set stores value under key and notifies listeners.
//
// If value is strictly equal to the current value (see [StrictEqual]) Set
// returns immediately: no history entry, no notification. Otherwise the
// previous value is recorded, the state is updated, and listeners for key
// run before wildcard listeners, all synchronously. Set returns the store so
// calls can be chained.
func (s *Store) Set(key string, value any) *Store {
	if key == Wildcard {
		s.logger.Warn("store set ignored, key is reserved for wildcard listeners", "key", key)
		return s
	}
	s.mu.Lock()
	previous := s.state[key]
	if StrictEqual(previous, value) {
		s.mu.Unlock()
		return s
	}
	s.history.push(Record{Key: key, Previous: previous, Timestamp: s.now()})
	s.state[key] = value
	keyed := s.listenersLocked(key)
	s.mu.Unlock()

	s.notify(key, value, previous, keyed)
	return s
}

// SetMany applies [Store.Set] once per entry, in order.
// Each entry gets its own notification pass.
func (s *Store) SetMany(entries ...Entry) *Store {
	for _, e := range entries {
		s.Set(e.Key, e.Value)
	}
	return s
}

// SetMap applies every pair of updates via [Store.Set], in sorted key order.
func (s *Store) SetMap(updates map[string]any) *Store {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, updates[k])
	}
	return s
}

// Subscribe registers fn for changes to key and returns a function that
// removes this registration.
//
// Every call creates a distinct registration, even for the same function:
// funcs are not comparable in Go, so two subscriptions of one callback are
// not collapsed into one entry.
// The returned unsubscribe function is idempotent. A nil fn registers
// nothing.
func (s *Store) Subscribe(key string, fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[key] = append(s.listeners[key], subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(key, id) })
	}
}

// SubscribeAll registers fn for every change. It is shorthand for
// Subscribe(Wildcard, fn).
func (s *Store) SubscribeAll(fn Listener) (unsubscribe func()) {
	return s.Subscribe(Wildcard, fn)
}

// ListenerCount returns the number of registrations for key.
func (s *Store) ListenerCount(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners[key])
}

// History returns the retained change records, oldest first.
// The returned slice is a copy.
func (s *Store) History() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.records()
}

// Reset replaces the whole state with a copy of initial and clears history.
//
// Listeners stay registered and are not notified.
func (s *Store) Reset(initial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = copyState(initial)
	s.history = newRing(s.maxHistory)
}

func (s *Store) unsubscribe(key string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.listeners[key]
	for i, sub := range subs {
		if sub.id == id {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(s.listeners, key)
		return
	}
	s.listeners[key] = subs
}

// listenersLocked copies the registrations for key. Caller holds s.mu.
func (s *Store) listenersLocked(key string) []subscription {
	subs := s.listeners[key]
	if len(subs) == 0 {
		return nil
	}
	return append([]subscription(nil), subs...)
}

// notify runs key listeners, then wildcard listeners. The wildcard set is
// read after the key listeners finish so registrations they make or remove
// are honoured.
func (s *Store) notify(key string, value, previous any, keyed []subscription) {
	if s.maxDepth > 0 {
		depth := s.depth.Add(1)
		defer s.depth.Add(-1)
		if int(depth) > s.maxDepth {
			panic(fmt.Errorf("%w: key %q at depth %d", ErrMaxDepthExceeded, key, depth))
		}
	}

	for _, sub := range keyed {
		s.invokeSafe(sub.fn, key, value, previous, false)
	}

	s.mu.RLock()
	global := s.listenersLocked(Wildcard)
	s.mu.RUnlock()

	for _, sub := range global {
		s.invokeSafe(sub.fn, key, value, previous, true)
	}
}

// invokeSafe calls a listener with panic recovery.
// Panics are logged with a correlation ID and do not propagate.
func (s *Store) invokeSafe(fn Listener, key string, value, previous any, global bool) {
	defer func() {
		if r := recover(); r != nil {
			msg := "store listener panicked"
			if global {
				msg = "store global listener panicked"
			}
			s.logger.Error(msg,
				"key", key,
				"panic", fmt.Sprintf("%v", r),
				"correlation_id", uuid.NewString(),
				"stack", string(debug.Stack()),
			)
			if s.onPanic != nil {
				s.onPanic(key, r)
			}
		}
	}()
	fn(value, previous, key)
}

func copyState(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
