package document

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingSave struct {
	mu    sync.Mutex
	calls [][]byte
	err   error
	block chan struct{}
	done  chan struct{}
}

func newRecordingSave() *recordingSave {
	return &recordingSave{done: make(chan struct{}, 16)}
}

func (r *recordingSave) fn(ctx context.Context, docID uuid.UUID, content []byte) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.calls = append(r.calls, append([]byte(nil), content...))
	err := r.err
	r.mu.Unlock()
	r.done <- struct{}{}
	return err
}

func (r *recordingSave) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingSave) lastCall() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func waitForSave(t *testing.T, r *recordingSave) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
	}
}

func waitForState(t *testing.T, s *Saver, want SaveState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state = %q, want %q", s.State(), want)
}

func TestSaverDebouncesEdits(t *testing.T) {
	rec := newRecordingSave()
	s := NewSaver(uuid.New(), 30*time.Millisecond, rec.fn)

	s.Edit([]byte("v1"))
	if got := s.State(); got != SavePending {
		t.Fatalf("state after edit = %q, want pending", got)
	}
	s.Edit([]byte("v2"))
	s.Edit([]byte("v3"))

	waitForSave(t, rec)
	waitForState(t, s, SaveSaved)

	if got := rec.callCount(); got != 1 {
		t.Errorf("save calls = %d, want 1 (edits within the window must coalesce)", got)
	}
	if got := string(rec.lastCall()); got != "v3" {
		t.Errorf("saved content = %q, want v3 (latest edit wins)", got)
	}
}

func TestSaverFailureSetsFailedState(t *testing.T) {
	rec := newRecordingSave()
	rec.err = errors.New("connection reset")
	s := NewSaver(uuid.New(), 10*time.Millisecond, rec.fn)

	s.Edit([]byte("v1"))
	waitForSave(t, rec)
	waitForState(t, s, SaveFailed)

	// No retry: one failed call and nothing more.
	time.Sleep(50 * time.Millisecond)
	if got := rec.callCount(); got != 1 {
		t.Errorf("save calls = %d, want 1 (failed saves are not retried)", got)
	}
}

func TestSaverEditDuringInFlightSaveFlushesAgain(t *testing.T) {
	rec := newRecordingSave()
	rec.block = make(chan struct{})
	s := NewSaver(uuid.New(), 5*time.Millisecond, rec.fn)

	s.Edit([]byte("v1"))
	waitForState(t, s, SaveSaving)

	// The save for v1 is blocked in flight; a new edit must not start a
	// second concurrent save.
	s.Edit([]byte("v2"))
	close(rec.block)

	waitForSave(t, rec) // v1
	waitForSave(t, rec) // v2, rescheduled after the first completes
	waitForState(t, s, SaveSaved)

	if got := rec.callCount(); got != 2 {
		t.Fatalf("save calls = %d, want 2", got)
	}
	if got := string(rec.lastCall()); got != "v2" {
		t.Errorf("final saved content = %q, want v2", got)
	}
}

func TestSaverCloseCancelsPendingSave(t *testing.T) {
	rec := newRecordingSave()
	s := NewSaver(uuid.New(), 20*time.Millisecond, rec.fn)

	s.Edit([]byte("v1"))
	s.Close()

	time.Sleep(80 * time.Millisecond)
	if got := rec.callCount(); got != 0 {
		t.Errorf("save calls after close = %d, want 0", got)
	}

	// Edits after close are dropped.
	s.Edit([]byte("v2"))
	time.Sleep(60 * time.Millisecond)
	if got := rec.callCount(); got != 0 {
		t.Errorf("save calls after closed edit = %d, want 0", got)
	}
}

func TestAutoSaveRoutesPerDocument(t *testing.T) {
	rec := newRecordingSave()
	a := NewAutoSave(10*time.Millisecond, rec.fn)
	defer a.Close()

	docA := uuid.New()
	docB := uuid.New()

	if got := a.State(docA); got != SaveIdle {
		t.Errorf("untouched document state = %q, want idle", got)
	}

	a.Edit(docA, []byte("a"))
	a.Edit(docB, []byte("b"))

	waitForSave(t, rec)
	waitForSave(t, rec)

	if got := rec.callCount(); got != 2 {
		t.Errorf("save calls = %d, want 2 (one per document)", got)
	}
	if got := a.State(docA); got != SaveSaved {
		t.Errorf("docA state = %q, want saved", got)
	}
}
