package client

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeUpdater struct {
	mu         sync.Mutex
	err        error
	delay      time.Duration
	calls      int
	active     int
	maxActive  int
	lastStatus string
}

func (f *fakeUpdater) UpdateTaskStatus(ctx context.Context, taskID uint, status string) (*Task, error) {
	f.mu.Lock()
	f.calls++
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.active--
	f.lastStatus = status
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Task{ID: taskID, Status: status}, nil
}

func boardFixture() []Task {
	return []Task{
		{ID: 1, Title: "first", Status: StatusTodo, Priority: "MEDIUM", ProjectID: 1},
		{ID: 2, Title: "second", Status: StatusReview, Priority: "HIGH", ProjectID: 1},
		{ID: 3, Title: "third", Status: StatusDone, Priority: "LOW", ProjectID: 1},
	}
}

func TestMoveTaskCommit(t *testing.T) {
	remote := &fakeUpdater{}
	store := NewTaskStore(remote)
	store.Replace(boardFixture())

	before := store.Tasks()

	if err := store.MoveTask(context.Background(), 1, StatusInProgress); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}

	after := store.Tasks()

	// Only the moved task's status may differ from the pre-move state.
	want := make([]Task, len(before))
	copy(want, before)
	want[0].Status = StatusInProgress

	if !reflect.DeepEqual(after, want) {
		t.Errorf("collection after commit = %+v, want %+v", after, want)
	}

	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls)
	}
}

func TestMoveTaskRollbackOnFailure(t *testing.T) {
	remote := &fakeUpdater{err: errors.New("server said no")}
	store := NewTaskStore(remote)
	store.Replace(boardFixture())

	before := store.Tasks()

	err := store.MoveTask(context.Background(), 1, StatusInProgress)

	if err == nil {
		t.Fatal("MoveTask() succeeded, want surfaced failure")
	}

	// The whole collection must match the pre-move snapshot exactly.
	after := store.Tasks()
	if !reflect.DeepEqual(after, before) {
		t.Errorf("collection after rollback = %+v, want %+v", after, before)
	}
}

func TestMoveTaskRollbackIsIdempotent(t *testing.T) {
	remote := &fakeUpdater{err: errors.New("still no")}
	store := NewTaskStore(remote)
	store.Replace(boardFixture())

	before := store.Tasks()

	for i := 0; i < 3; i++ {
		if err := store.MoveTask(context.Background(), 2, StatusTodo); err == nil {
			t.Fatal("MoveTask() succeeded, want failure")
		}
	}

	if after := store.Tasks(); !reflect.DeepEqual(after, before) {
		t.Errorf("repeated failed moves changed the collection: %+v", after)
	}
}

func TestMoveTaskValidation(t *testing.T) {
	remote := &fakeUpdater{}
	store := NewTaskStore(remote)
	store.Replace(boardFixture())

	before := store.Tasks()

	if err := store.MoveTask(context.Background(), 1, "BLOCKED"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("error = %v, want ErrInvalidStatus", err)
	}

	if err := store.MoveTask(context.Background(), 99, StatusDone); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("error = %v, want ErrUnknownTask", err)
	}

	if remote.calls != 0 {
		t.Errorf("remote called %d times for rejected moves", remote.calls)
	}

	if after := store.Tasks(); !reflect.DeepEqual(after, before) {
		t.Errorf("rejected moves changed the collection: %+v", after)
	}
}

func TestMoveTaskAppliesBeforeRemoteResolves(t *testing.T) {
	remote := &fakeUpdater{delay: 50 * time.Millisecond}
	store := NewTaskStore(remote)
	store.Replace(boardFixture())

	done := make(chan error, 1)
	go func() {
		done <- store.MoveTask(context.Background(), 1, StatusInProgress)
	}()

	// The optimistic mutation is visible while the remote call is in
	// flight.
	deadline := time.After(time.Second)
	for {
		tasks := store.Tasks()
		if tasks[0].Status == StatusInProgress {
			break
		}
		select {
		case <-deadline:
			t.Fatal("optimistic update never became visible")
		case <-time.After(time.Millisecond):
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
}

func TestMovesOfSameTaskSerialize(t *testing.T) {
	remote := &fakeUpdater{delay: 20 * time.Millisecond}
	store := NewTaskStore(remote)
	store.Replace(boardFixture())

	var wg sync.WaitGroup
	for _, status := range []string{StatusInProgress, StatusReview} {
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			if err := store.MoveTask(context.Background(), 1, status); err != nil {
				t.Errorf("MoveTask(%s) error = %v", status, err)
			}
		}(status)
	}
	wg.Wait()

	if remote.maxActive > 1 {
		t.Errorf("same-task moves overlapped (max concurrent = %d)", remote.maxActive)
	}

	// Last to resolve wins; either way the collection holds one of the
	// two requested statuses.
	final := store.Tasks()[0].Status
	if final != StatusInProgress && final != StatusReview {
		t.Errorf("final status = %q, want one of the requested values", final)
	}
	if final != remote.lastStatus {
		t.Errorf("displayed status %q does not match last resolved call %q", final, remote.lastStatus)
	}
}
