package commands

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

type fakeTaskRepo struct {
	mu sync.Mutex

	byID       map[uuid.UUID]*task.Task
	dependents map[uuid.UUID][]*task.Task
	byArea     map[uuid.UUID][]*task.Task
	byProject  map[uuid.UUID][]*task.Task
	incomplete []*task.Task

	findErr   error
	listErr   error
	updateErr error

	updates map[uuid.UUID]task.ScoreUpdate
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		byID:       make(map[uuid.UUID]*task.Task),
		dependents: make(map[uuid.UUID][]*task.Task),
		byArea:     make(map[uuid.UUID][]*task.Task),
		byProject:  make(map[uuid.UUID][]*task.Task),
		updates:    make(map[uuid.UUID]task.ScoreUpdate),
	}
}

func (f *fakeTaskRepo) add(t *task.Task) {
	f.byID[t.ID] = t
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, task.ErrNotFound
}

func (f *fakeTaskRepo) FindIncompleteByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	var out []*task.Task
	for _, id := range ids {
		if t, ok := f.byID[id]; ok && !t.Completed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) FindDependents(ctx context.Context, taskID uuid.UUID) ([]*task.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.dependents[taskID], nil
}

func (f *fakeTaskRepo) FindIncompleteByArea(ctx context.Context, areaID uuid.UUID) ([]*task.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byArea[areaID], nil
}

func (f *fakeTaskRepo) FindIncompleteByProject(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byProject[projectID], nil
}

func (f *fakeTaskRepo) ListIncomplete(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*task.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.incomplete) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.incomplete) {
		end = len(f.incomplete)
	}
	return f.incomplete[offset:end], nil
}

func (f *fakeTaskRepo) UpdateScore(ctx context.Context, id uuid.UUID, update task.ScoreUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = update
	return nil
}

var errEnqueue = errors.New("broker unavailable")

type recordingDispatcher struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	failFor  map[uuid.UUID]bool
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{failFor: make(map[uuid.UUID]bool)}
}

func (d *recordingDispatcher) EnqueueTaskScore(ctx context.Context, taskID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failFor[taskID] {
		return errEnqueue
	}
	d.enqueued = append(d.enqueued, taskID)
	return nil
}
