package contact

import (
	"sync"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "idle"
}

// DisplayWindow is how long success and error stay visible before the
// tracker falls back to idle.
const DisplayWindow = 5 * time.Second

type timer interface {
	Stop() bool
}

// Tracker is the submission status machine:
// idle -> submitting -> success|error -> idle.
type Tracker struct {
	window    time.Duration
	afterFunc func(time.Duration, func()) timer
	onChange  func(State)

	mu    sync.Mutex
	state State
	gen   uint64
	timer timer
}

// NewTracker returns an idle tracker. onChange, if set, is called with every
// new state outside the tracker's lock.
func NewTracker(onChange func(State)) *Tracker {
	return &Tracker{
		window: DisplayWindow,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		onChange: onChange,
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Begin moves to submitting. It fails with ErrBusy while a submission is in
// flight, so a second click cannot send the form twice.
func (t *Tracker) Begin() error {
	t.mu.Lock()
	if t.state == StateSubmitting {
		t.mu.Unlock()
		return ErrBusy
	}
	t.stopTimerLocked()
	t.state = StateSubmitting
	t.gen++
	t.mu.Unlock()

	t.notify(StateSubmitting)
	return nil
}

// Abort returns to idle without showing a result, e.g. after local
// validation rejected the form.
func (t *Tracker) Abort() {
	t.mu.Lock()
	t.stopTimerLocked()
	t.state = StateIdle
	t.gen++
	t.mu.Unlock()

	t.notify(StateIdle)
}

// Finish records the outcome of the in-flight submission and schedules the
// return to idle. It is a no-op when nothing is in flight.
func (t *Tracker) Finish(err error) {
	next := StateSuccess
	if err != nil {
		next = StateError
	}

	t.mu.Lock()
	if t.state != StateSubmitting {
		t.mu.Unlock()
		return
	}
	t.state = next
	t.gen++
	gen := t.gen
	t.timer = t.afterFunc(t.window, func() { t.expire(gen) })
	t.mu.Unlock()

	t.notify(next)
}

func (t *Tracker) expire(gen uint64) {
	t.mu.Lock()
	// a newer transition already replaced the displayed result
	if t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.state = StateIdle
	t.gen++
	t.timer = nil
	t.mu.Unlock()

	t.notify(StateIdle)
}

func (t *Tracker) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) notify(s State) {
	if t.onChange != nil {
		t.onChange(s)
	}
}
