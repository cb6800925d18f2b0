package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/database"
)

// sqliteTimeFormat is how timestamps are stored in SQLite text columns.
const sqliteTimeFormat = time.RFC3339Nano

// SQLiteTaskRepository implements task.Repository for local SQLite mode.
// UUIDs and timestamps are stored as text.
type SQLiteTaskRepository struct {
	conn database.Connection
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

type sqliteTaskRow struct {
	ID                 string
	UserID             string
	ProjectID          sql.NullString
	AreaID             sql.NullString
	DueDate            sql.NullString
	Priority           string
	ProgressPercentage float64
	CreatedAt          string
	Completed          bool
	CurrentScore       float64
	ScoreLastUpdated   sql.NullString
}

func (r sqliteTaskRow) toTask() (*task.Task, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("bad task id %q: %w", r.ID, err)
	}
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", r.UserID, err)
	}
	createdAt, err := time.Parse(sqliteTimeFormat, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", r.CreatedAt, err)
	}

	t := &task.Task{
		ID:                 id,
		UserID:             userID,
		Priority:           task.ParsePriority(r.Priority),
		ProgressPercentage: r.ProgressPercentage,
		CreatedAt:          createdAt,
		Completed:          r.Completed,
		CurrentScore:       r.CurrentScore,
	}

	if r.ProjectID.Valid {
		projectID, err := uuid.Parse(r.ProjectID.String)
		if err != nil {
			return nil, fmt.Errorf("bad project id %q: %w", r.ProjectID.String, err)
		}
		t.ProjectID = &projectID
	}
	if r.AreaID.Valid {
		areaID, err := uuid.Parse(r.AreaID.String)
		if err != nil {
			return nil, fmt.Errorf("bad area id %q: %w", r.AreaID.String, err)
		}
		t.AreaID = &areaID
	}
	if r.DueDate.Valid {
		due, err := time.Parse(sqliteTimeFormat, r.DueDate.String)
		if err != nil {
			return nil, fmt.Errorf("bad due_date %q: %w", r.DueDate.String, err)
		}
		t.DueDate = &due
	}
	if r.ScoreLastUpdated.Valid {
		updated, err := time.Parse(sqliteTimeFormat, r.ScoreLastUpdated.String)
		if err != nil {
			return nil, fmt.Errorf("bad score_last_updated %q: %w", r.ScoreLastUpdated.String, err)
		}
		t.ScoreLastUpdated = &updated
	}

	return t, nil
}

func scanSQLiteTaskRow(row database.Row) (*task.Task, error) {
	var r sqliteTaskRow
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.ProjectID,
		&r.AreaID,
		&r.DueDate,
		&r.Priority,
		&r.ProgressPercentage,
		&r.CreatedAt,
		&r.Completed,
		&r.CurrentScore,
		&r.ScoreLastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return r.toTask()
}

func scanSQLiteTasks(rows database.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanSQLiteTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByID retrieves a task and its dependency list.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = ?
	`

	t, err := scanSQLiteTaskRow(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}

	deps, err := r.conn.Query(ctx, `SELECT depends_on_task_id FROM task_dependencies WHERE task_id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	defer deps.Close()

	for deps.Next() {
		var raw string
		if err := deps.Scan(&raw); err != nil {
			return nil, err
		}
		depID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("bad dependency id %q: %w", raw, err)
		}
		t.DependencyTaskIDs = append(t.DependencyTaskIDs, depID)
	}
	if err := deps.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

// FindIncompleteByIDs retrieves the incomplete tasks among the given IDs.
func (r *SQLiteTaskRepository) FindIncompleteByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = 0 AND id IN (` + placeholders + `)
	`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteTasks(rows)
}

// FindDependents retrieves incomplete tasks that depend on the given task.
func (r *SQLiteTaskRepository) FindDependents(ctx context.Context, taskID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = 0
		  AND id IN (SELECT task_id FROM task_dependencies WHERE depends_on_task_id = ?)
	`

	rows, err := r.conn.Query(ctx, query, taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteTasks(rows)
}

// FindIncompleteByArea retrieves incomplete tasks attached to the area
// directly or through one of its projects.
func (r *SQLiteTaskRepository) FindIncompleteByArea(ctx context.Context, areaID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = 0
		  AND (area_id = ? OR project_id IN (SELECT id FROM projects WHERE area_id = ?))
	`

	rows, err := r.conn.Query(ctx, query, areaID.String(), areaID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteTasks(rows)
}

// FindIncompleteByProject retrieves incomplete tasks in the project.
func (r *SQLiteTaskRepository) FindIncompleteByProject(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = 0 AND project_id = ?
	`

	rows, err := r.conn.Query(ctx, query, projectID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteTasks(rows)
}

// ListIncomplete pages through incomplete tasks in creation order. A nil
// userID lists all users.
func (r *SQLiteTaskRepository) ListIncomplete(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = 0
	`
	var args []any
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, userID.String())
	}
	query += ` ORDER BY created_at, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteTasks(rows)
}

// UpdateScore persists a computed score. Last writer wins.
func (r *SQLiteTaskRepository) UpdateScore(ctx context.Context, id uuid.UUID, update task.ScoreUpdate) error {
	query := `
		UPDATE tasks SET
			current_score = ?,
			score_last_updated = ?,
			area_importance = ?,
			project_importance = ?,
			pillar_weight = ?,
			dependencies_met = ?,
			score_calculation_version = ?
		WHERE id = ?
	`

	result, err := r.conn.Exec(ctx, query,
		update.Score,
		update.ScoreLastUpdated.UTC().Format(sqliteTimeFormat),
		update.AreaImportance,
		update.ProjectImportance,
		update.PillarWeight,
		update.DependenciesMet,
		update.CalculationVersion,
		id.String(),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}
