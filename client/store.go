package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownTask   = errors.New("task not in store")
	ErrInvalidStatus = errors.New("invalid status")
)

// StatusUpdater is the remote half of an optimistic move. *Client satisfies
// it; tests inject fakes.
type StatusUpdater interface {
	UpdateTaskStatus(ctx context.Context, taskID uint, status string) (*Task, error)
}

// TaskStore holds the board's task collection on the client. It is an
// explicit, injected state container: the UI owns one instance and reads
// from it, nothing here is global.
//
// MoveTask applies a status change locally before the server confirms it.
// On failure the whole collection is restored from the pre-move snapshot in
// one step. Moves of the same task serialize on a per-task lock; moves of
// different tasks may overlap, and the last one to resolve wins. There is
// no version token on tasks, so that race is accepted, not detected.
type TaskStore struct {
	remote StatusUpdater

	mu    sync.Mutex
	tasks []Task

	locksMu sync.Mutex
	locks   map[uint]*sync.Mutex
}

func NewTaskStore(remote StatusUpdater) *TaskStore {
	return &TaskStore{
		remote: remote,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// Replace swaps in a freshly fetched collection.
func (s *TaskStore) Replace(tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]Task, len(tasks))
	copy(s.tasks, tasks)
}

// Tasks returns a copy of the current collection.
func (s *TaskStore) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks
}

// Add prepends a server-confirmed task; the collection is newest-first.
func (s *TaskStore) Add(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append([]Task{task}, s.tasks...)
}

// Apply replaces a task in place with its server-confirmed version.
func (s *TaskStore) Apply(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			return
		}
	}
}

// Remove drops a task after a confirmed delete.
func (s *TaskStore) Remove(taskID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

func (s *TaskStore) taskLock(taskID uint) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[taskID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[taskID] = lock
	}
	return lock
}

// MoveTask changes a task's status optimistically: the local collection is
// mutated before the network call, so callers see the move immediately. If
// the server rejects it, the snapshot taken before the mutation replaces
// the collection atomically and the failure is returned.
func (s *TaskStore) MoveTask(ctx context.Context, taskID uint, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()

	snapshot := make([]Task, len(s.tasks))
	copy(snapshot, s.tasks)

	found := false
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			s.tasks[i].Status = status
			found = true
			break
		}
	}

	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownTask, taskID)
	}

	if _, err := s.remote.UpdateTaskStatus(ctx, taskID, status); err != nil {
		s.mu.Lock()
		s.tasks = snapshot
		s.mu.Unlock()

		return fmt.Errorf("move task %d: %w", taskID, err)
	}

	return nil
}
