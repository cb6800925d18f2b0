package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/hierarchy"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/database"
)

// PostgresHierarchyRepository implements hierarchy.Repository using
// PostgreSQL.
type PostgresHierarchyRepository struct {
	conn database.Connection
}

// NewPostgresHierarchyRepository creates a new PostgreSQL hierarchy
// repository.
func NewPostgresHierarchyRepository(conn database.Connection) *PostgresHierarchyRepository {
	return &PostgresHierarchyRepository{conn: conn}
}

// FindProject retrieves a project by its ID.
func (r *PostgresHierarchyRepository) FindProject(ctx context.Context, id uuid.UUID) (*hierarchy.Project, error) {
	query := `SELECT id, area_id, importance FROM projects WHERE id = $1`

	var p hierarchy.Project
	var areaID uuid.NullUUID
	err := r.conn.QueryRow(ctx, query, id).Scan(&p.ID, &areaID, &p.Importance)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, hierarchy.ErrNotFound
		}
		return nil, err
	}
	if areaID.Valid {
		a := areaID.UUID
		p.AreaID = &a
	}
	return &p, nil
}

// FindArea retrieves an area by its ID.
func (r *PostgresHierarchyRepository) FindArea(ctx context.Context, id uuid.UUID) (*hierarchy.Area, error) {
	query := `SELECT id, pillar_id, importance FROM areas WHERE id = $1`

	var a hierarchy.Area
	var pillarID uuid.NullUUID
	err := r.conn.QueryRow(ctx, query, id).Scan(&a.ID, &pillarID, &a.Importance)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, hierarchy.ErrNotFound
		}
		return nil, err
	}
	if pillarID.Valid {
		p := pillarID.UUID
		a.PillarID = &p
	}
	return &a, nil
}

// FindPillar retrieves a pillar by its ID.
func (r *PostgresHierarchyRepository) FindPillar(ctx context.Context, id uuid.UUID) (*hierarchy.Pillar, error) {
	query := `SELECT id, weight FROM pillars WHERE id = $1`

	var p hierarchy.Pillar
	err := r.conn.QueryRow(ctx, query, id).Scan(&p.ID, &p.Weight)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, hierarchy.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
