package document

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SaveState tracks a draft through its explicit save lifecycle:
// idle -> pending -> saving -> saved|failed.
type SaveState string

const (
	SaveIdle    SaveState = "idle"
	SavePending SaveState = "pending"
	SaveSaving  SaveState = "saving"
	SaveSaved   SaveState = "saved"
	SaveFailed  SaveState = "failed"
)

type SaveFunc func(ctx context.Context, docID uuid.UUID, content []byte) error

// Saver debounces draft edits into repository writes. A new edit
// restarts the delay timer; at most one save is in flight, and an edit
// arriving mid-save schedules one more flush carrying the newest
// content. A failed save flips the state flag and nothing else: no
// retry, no backoff.
type Saver struct {
	mu sync.Mutex

	docID uuid.UUID
	delay time.Duration
	save  SaveFunc

	state    SaveState
	latest   []byte
	timer    *time.Timer
	inFlight bool
	dirty    bool
	closed   bool
}

func NewSaver(docID uuid.UUID, delay time.Duration, save SaveFunc) *Saver {
	return &Saver{
		docID: docID,
		delay: delay,
		save:  save,
		state: SaveIdle,
	}
}

// Edit records new draft content and (re)starts the debounce timer.
func (s *Saver) Edit(content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.latest = append([]byte(nil), content...)

	if s.inFlight {
		// The running save carries stale content; flush again once it
		// finishes.
		s.dirty = true
		return
	}

	s.state = SavePending
	s.resetTimerLocked()
}

func (s *Saver) resetTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

func (s *Saver) flush() {
	s.mu.Lock()
	if s.closed || s.inFlight {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.inFlight = true
	s.state = SaveSaving
	content := s.latest
	s.mu.Unlock()

	err := s.save(context.Background(), s.docID, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		log.Printf("Draft save failed for document %s: %v", s.docID, err)
		s.state = SaveFailed
	} else {
		s.state = SaveSaved
	}
	if s.dirty && !s.closed {
		s.dirty = false
		s.state = SavePending
		s.resetTimerLocked()
	}
}

// State reports the current save lifecycle state.
func (s *Saver) State() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels any pending timer so no dangling write fires after the
// draft session ends.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.dirty = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// AutoSave owns one Saver per open draft.
type AutoSave struct {
	mu     sync.Mutex
	savers map[uuid.UUID]*Saver
	delay  time.Duration
	save   SaveFunc
}

func NewAutoSave(delay time.Duration, save SaveFunc) *AutoSave {
	return &AutoSave{
		savers: make(map[uuid.UUID]*Saver),
		delay:  delay,
		save:   save,
	}
}

// Edit routes a draft edit to the document's saver, creating one on
// first touch.
func (a *AutoSave) Edit(docID uuid.UUID, content []byte) SaveState {
	a.mu.Lock()
	saver, ok := a.savers[docID]
	if !ok {
		saver = NewSaver(docID, a.delay, a.save)
		a.savers[docID] = saver
	}
	a.mu.Unlock()

	saver.Edit(content)
	return saver.State()
}

func (a *AutoSave) State(docID uuid.UUID) SaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if saver, ok := a.savers[docID]; ok {
		return saver.State()
	}
	return SaveIdle
}

// Close cancels every pending save.
func (a *AutoSave) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, saver := range a.savers {
		saver.Close()
	}
}
