package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumlife/aurum/internal/prioritization/domain/hierarchy"
)

func TestSQLiteHierarchyRepository(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewSQLiteHierarchyRepository(conn)

	userID := uuid.New()
	pillarID := uuid.New()
	areaID := uuid.New()
	projectID := uuid.New()

	_, err := conn.Exec(ctx, `INSERT INTO pillars (id, user_id, weight) VALUES (?, ?, 1.8)`,
		pillarID.String(), userID.String())
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `INSERT INTO areas (id, user_id, pillar_id, importance) VALUES (?, ?, ?, 5)`,
		areaID.String(), userID.String(), pillarID.String())
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `INSERT INTO projects (id, user_id, area_id, importance) VALUES (?, ?, ?, 4)`,
		projectID.String(), userID.String(), areaID.String())
	require.NoError(t, err)

	t.Run("walks the chain", func(t *testing.T) {
		project, err := repo.FindProject(ctx, projectID)
		require.NoError(t, err)
		assert.Equal(t, 4, project.Importance)
		require.NotNil(t, project.AreaID)

		area, err := repo.FindArea(ctx, *project.AreaID)
		require.NoError(t, err)
		assert.Equal(t, 5, area.Importance)
		require.NotNil(t, area.PillarID)

		pillar, err := repo.FindPillar(ctx, *area.PillarID)
		require.NoError(t, err)
		assert.Equal(t, 1.8, pillar.Weight)
	})

	t.Run("orphan area has no pillar", func(t *testing.T) {
		orphanID := uuid.New()
		_, err := conn.Exec(ctx, `INSERT INTO areas (id, user_id, importance) VALUES (?, ?, 2)`,
			orphanID.String(), userID.String())
		require.NoError(t, err)

		area, err := repo.FindArea(ctx, orphanID)
		require.NoError(t, err)
		assert.Nil(t, area.PillarID)
		assert.Equal(t, 2, area.Importance)
	})

	t.Run("missing rows return ErrNotFound", func(t *testing.T) {
		_, err := repo.FindProject(ctx, uuid.New())
		assert.ErrorIs(t, err, hierarchy.ErrNotFound)

		_, err = repo.FindArea(ctx, uuid.New())
		assert.ErrorIs(t, err, hierarchy.ErrNotFound)

		_, err = repo.FindPillar(ctx, uuid.New())
		assert.ErrorIs(t, err, hierarchy.ErrNotFound)
	})
}
