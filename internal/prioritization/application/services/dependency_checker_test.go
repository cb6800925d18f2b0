package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

type stubTaskRepo struct {
	incompleteByIDs []*task.Task
	err             error
}

func (s *stubTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return nil, task.ErrNotFound
}

func (s *stubTaskRepo) FindIncompleteByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.incompleteByIDs, nil
}

func (s *stubTaskRepo) FindDependents(ctx context.Context, taskID uuid.UUID) ([]*task.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) FindIncompleteByArea(ctx context.Context, areaID uuid.UUID) ([]*task.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) FindIncompleteByProject(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) ListIncomplete(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*task.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) UpdateScore(ctx context.Context, id uuid.UUID, update task.ScoreUpdate) error {
	return nil
}

func TestDependencyChecker_Met(t *testing.T) {
	ctx := context.Background()

	t.Run("no dependencies is trivially met", func(t *testing.T) {
		checker := NewDependencyChecker(&stubTaskRepo{}, nil)
		tk := &task.Task{ID: uuid.New()}

		assert.True(t, checker.Met(ctx, tk))
	})

	t.Run("met when every dependency is completed", func(t *testing.T) {
		checker := NewDependencyChecker(&stubTaskRepo{}, nil)
		tk := &task.Task{ID: uuid.New(), DependencyTaskIDs: []uuid.UUID{uuid.New(), uuid.New()}}

		assert.True(t, checker.Met(ctx, tk))
	})

	t.Run("blocked when any dependency is incomplete", func(t *testing.T) {
		repo := &stubTaskRepo{incompleteByIDs: []*task.Task{{ID: uuid.New()}}}
		checker := NewDependencyChecker(repo, nil)
		tk := &task.Task{ID: uuid.New(), DependencyTaskIDs: []uuid.UUID{uuid.New()}}

		assert.False(t, checker.Met(ctx, tk))
	})

	t.Run("query failure fails open to met", func(t *testing.T) {
		repo := &stubTaskRepo{err: errors.New("timeout")}
		checker := NewDependencyChecker(repo, nil)
		tk := &task.Task{ID: uuid.New(), DependencyTaskIDs: []uuid.UUID{uuid.New()}}

		assert.True(t, checker.Met(ctx, tk))
	})
}
