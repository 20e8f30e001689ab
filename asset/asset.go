// Package asset loads models, textures and sounds off the UI thread and hands
// the results back as explicit pending/ready/failed states.
package asset

import (
	"fmt"
	"log"
	"slices"
	"sync"
)

type Status int

const (
	Pending Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// State is the load state of one asset. The zero value is pending.
type State[T any] struct {
	Path string

	mu     sync.RWMutex
	status Status
	value  T
	err    error
}

// Get returns the value and true once the asset is ready.
func (s *State[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.status == Ready
}

func (s *State[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *State[T]) resolve(v T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status, s.err = Failed, err
		return
	}
	s.status, s.value = Ready, v
}

// ReadyState wraps an already available value.
func ReadyState[T any](path string, v T) *State[T] {
	s := &State[T]{Path: path}
	s.resolve(v, nil)
	return s
}

// Dispatcher runs fn on the UI thread at some later point.
type Dispatcher func(fn func())

// Queue is a Dispatcher for hosts that drain callbacks once per frame.
type Queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

// Drain runs every queued callback and returns how many ran.
func (q *Queue) Drain() int {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Manager tracks a batch of loads and reports their progress. All callbacks
// and all counters live on the dispatcher's thread, and Load must be called
// from that thread too.
type Manager struct {
	OnStart    func(path string, loaded, total int)
	OnProgress func(path string, loaded, total int)
	OnLoad     func()
	OnError    func(path string, err error)

	dispatch Dispatcher
	loading  bool
	loaded   int
	total    int
	pending  []string
	failures []Failure
}

// Failure is an item that finished with an error.
type Failure struct {
	Path string
	Err  error
}

// NewManager returns a manager whose callbacks log like a browser loading
// manager would. A nil dispatcher runs completions on the loading goroutine.
func NewManager(dispatch Dispatcher) *Manager {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Manager{
		OnStart: func(string, int, int) {
			log.Println("loading started")
		},
		OnProgress: func(path string, loaded, total int) {
			log.Printf("loading %s: %.0f%%", path, float64(loaded)/float64(total)*100)
		},
		OnLoad: func() {
			log.Println("loading finished")
		},
		OnError: func(path string, err error) {
			log.Printf("loading error: %s: %v", path, err)
		},
		dispatch: dispatch,
	}
}

// Progress returns the finished and total item counts.
func (m *Manager) Progress() (loaded, total int) {
	return m.loaded, m.total
}

func (m *Manager) Loading() bool {
	return m.loading
}

// Pending lists the items still loading, in the order they were started.
func (m *Manager) Pending() []string {
	return slices.Clone(m.pending)
}

// Failures lists every item that failed so far.
func (m *Manager) Failures() []Failure {
	return slices.Clone(m.failures)
}

func (m *Manager) itemStart(path string) {
	m.total++
	m.pending = append(m.pending, path)
	if !m.loading && m.OnStart != nil {
		m.OnStart(path, m.loaded, m.total)
	}
	m.loading = true
}

func (m *Manager) itemError(path string, err error) {
	m.failures = append(m.failures, Failure{Path: path, Err: err})
	if m.OnError != nil {
		m.OnError(path, err)
	}
}

func (m *Manager) itemEnd(path string) {
	m.loaded++
	if i := slices.Index(m.pending, path); i >= 0 {
		m.pending = slices.Delete(m.pending, i, i+1)
	}

	done := m.loaded == m.total
	if done {
		m.loading = false
	}
	if m.OnProgress != nil {
		m.OnProgress(path, m.loaded, m.total)
	}
	if done && m.OnLoad != nil {
		m.OnLoad()
	}
}

// Load starts fn(path) on a new goroutine and returns its state at once. On
// success done is called with the value on the dispatcher's thread, after
// the state is ready. A failure is reported through OnError and leaves the
// state failed; failed items still count as finished.
func Load[T any](m *Manager, path string, fn func(path string) (T, error), done func(T)) *State[T] {
	s := &State[T]{Path: path}
	m.itemStart(path)

	go func() {
		v, err := call(fn, path)
		m.dispatch(func() {
			s.resolve(v, err)
			if err != nil {
				m.itemError(path, err)
			} else if done != nil {
				done(v)
			}
			m.itemEnd(path)
		})
	}()

	return s
}

func call[T any](fn func(string) (T, error), path string) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load %s: panic: %v", path, r)
		}
	}()
	return fn(path)
}

// Watch holds load states until they settle. Poll is meant to be called once
// per frame from the thread the states resolve on.
type Watch[T any] struct {
	keys   []string
	states []*State[T]
}

// Add tracks s under key. Several states may share a key.
func (w *Watch[T]) Add(key string, s *State[T]) {
	w.keys = append(w.keys, key)
	w.states = append(w.states, s)
}

// Poll calls fn once for every state that has left Pending since the last
// poll, then stops tracking it. It returns how many are still pending.
func (w *Watch[T]) Poll(fn func(key string, s *State[T])) int {
	keys, states := w.keys[:0], w.states[:0]
	for i, s := range w.states {
		if s.Status() == Pending {
			keys = append(keys, w.keys[i])
			states = append(states, s)
			continue
		}
		fn(w.keys[i], s)
	}
	clear(w.states[len(states):])
	w.keys, w.states = keys, states
	return len(states)
}

func (w *Watch[T]) Len() int {
	return len(w.states)
}
