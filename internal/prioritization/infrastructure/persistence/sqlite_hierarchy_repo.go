package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/hierarchy"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/database"
)

// SQLiteHierarchyRepository implements hierarchy.Repository for local SQLite
// mode.
type SQLiteHierarchyRepository struct {
	conn database.Connection
}

// NewSQLiteHierarchyRepository creates a new SQLite hierarchy repository.
func NewSQLiteHierarchyRepository(conn database.Connection) *SQLiteHierarchyRepository {
	return &SQLiteHierarchyRepository{conn: conn}
}

// FindProject retrieves a project by its ID.
func (r *SQLiteHierarchyRepository) FindProject(ctx context.Context, id uuid.UUID) (*hierarchy.Project, error) {
	query := `SELECT id, area_id, importance FROM projects WHERE id = ?`

	var rawID string
	var rawAreaID sql.NullString
	var p hierarchy.Project
	err := r.conn.QueryRow(ctx, query, id.String()).Scan(&rawID, &rawAreaID, &p.Importance)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, hierarchy.ErrNotFound
		}
		return nil, err
	}

	if p.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("bad project id %q: %w", rawID, err)
	}
	if rawAreaID.Valid {
		areaID, err := uuid.Parse(rawAreaID.String)
		if err != nil {
			return nil, fmt.Errorf("bad area id %q: %w", rawAreaID.String, err)
		}
		p.AreaID = &areaID
	}
	return &p, nil
}

// FindArea retrieves an area by its ID.
func (r *SQLiteHierarchyRepository) FindArea(ctx context.Context, id uuid.UUID) (*hierarchy.Area, error) {
	query := `SELECT id, pillar_id, importance FROM areas WHERE id = ?`

	var rawID string
	var rawPillarID sql.NullString
	var a hierarchy.Area
	err := r.conn.QueryRow(ctx, query, id.String()).Scan(&rawID, &rawPillarID, &a.Importance)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, hierarchy.ErrNotFound
		}
		return nil, err
	}

	if a.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("bad area id %q: %w", rawID, err)
	}
	if rawPillarID.Valid {
		pillarID, err := uuid.Parse(rawPillarID.String)
		if err != nil {
			return nil, fmt.Errorf("bad pillar id %q: %w", rawPillarID.String, err)
		}
		a.PillarID = &pillarID
	}
	return &a, nil
}

// FindPillar retrieves a pillar by its ID.
func (r *SQLiteHierarchyRepository) FindPillar(ctx context.Context, id uuid.UUID) (*hierarchy.Pillar, error) {
	query := `SELECT id, weight FROM pillars WHERE id = ?`

	var rawID string
	var p hierarchy.Pillar
	err := r.conn.QueryRow(ctx, query, id.String()).Scan(&rawID, &p.Weight)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, hierarchy.ErrNotFound
		}
		return nil, err
	}

	if p.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("bad pillar id %q: %w", rawID, err)
	}
	return &p, nil
}
