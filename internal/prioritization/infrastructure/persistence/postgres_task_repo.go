package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/database"
)

const taskColumns = `id, user_id, project_id, area_id, due_date, priority,
	       progress_percentage, created_at, completed, current_score, score_last_updated`

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	conn database.Connection
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

type taskRow struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	ProjectID          uuid.NullUUID
	AreaID             uuid.NullUUID
	DueDate            sql.NullTime
	Priority           string
	ProgressPercentage float64
	CreatedAt          time.Time
	Completed          bool
	CurrentScore       float64
	ScoreLastUpdated   sql.NullTime
}

func (r taskRow) toTask() *task.Task {
	t := &task.Task{
		ID:                 r.ID,
		UserID:             r.UserID,
		Priority:           task.ParsePriority(r.Priority),
		ProgressPercentage: r.ProgressPercentage,
		CreatedAt:          r.CreatedAt,
		Completed:          r.Completed,
		CurrentScore:       r.CurrentScore,
	}
	if r.ProjectID.Valid {
		id := r.ProjectID.UUID
		t.ProjectID = &id
	}
	if r.AreaID.Valid {
		id := r.AreaID.UUID
		t.AreaID = &id
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time
		t.DueDate = &due
	}
	if r.ScoreLastUpdated.Valid {
		updated := r.ScoreLastUpdated.Time
		t.ScoreLastUpdated = &updated
	}
	return t
}

func scanTaskRow(row database.Row) (*task.Task, error) {
	var r taskRow
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
	return r.toTask(), nil
}

func scanTasks(rows database.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
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
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`

	t, err := scanTaskRow(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}

	deps, err := r.conn.Query(ctx, `SELECT depends_on_task_id FROM task_dependencies WHERE task_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer deps.Close()

	for deps.Next() {
		var depID uuid.UUID
		if err := deps.Scan(&depID); err != nil {
			return nil, err
		}
		t.DependencyTaskIDs = append(t.DependencyTaskIDs, depID)
	}
	if err := deps.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

// FindIncompleteByIDs retrieves the incomplete tasks among the given IDs.
func (r *PostgresTaskRepository) FindIncompleteByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = ANY($1) AND completed = FALSE
	`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindDependents retrieves incomplete tasks that depend on the given task.
func (r *PostgresTaskRepository) FindDependents(ctx context.Context, taskID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = FALSE
		  AND id IN (SELECT task_id FROM task_dependencies WHERE depends_on_task_id = $1)
	`

	rows, err := r.conn.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindIncompleteByArea retrieves incomplete tasks attached to the area
// directly or through one of its projects.
func (r *PostgresTaskRepository) FindIncompleteByArea(ctx context.Context, areaID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = FALSE
		  AND (area_id = $1 OR project_id IN (SELECT id FROM projects WHERE area_id = $1))
	`

	rows, err := r.conn.Query(ctx, query, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindIncompleteByProject retrieves incomplete tasks in the project.
func (r *PostgresTaskRepository) FindIncompleteByProject(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = FALSE AND project_id = $1
	`

	rows, err := r.conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListIncomplete pages through incomplete tasks in creation order. A nil
// userID lists all users.
func (r *PostgresTaskRepository) ListIncomplete(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = FALSE AND ($1::uuid IS NULL OR user_id = $1)
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`

	var filter uuid.NullUUID
	if userID != nil {
		filter = uuid.NullUUID{UUID: *userID, Valid: true}
	}

	rows, err := r.conn.Query(ctx, query, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// UpdateScore persists a computed score. Last writer wins.
func (r *PostgresTaskRepository) UpdateScore(ctx context.Context, id uuid.UUID, update task.ScoreUpdate) error {
	query := `
		UPDATE tasks SET
			current_score = $2,
			score_last_updated = $3,
			area_importance = $4,
			project_importance = $5,
			pillar_weight = $6,
			dependencies_met = $7,
			score_calculation_version = $8
		WHERE id = $1
	`

	result, err := r.conn.Exec(ctx, query,
		id,
		update.Score,
		update.ScoreLastUpdated,
		update.AreaImportance,
		update.ProjectImportance,
		update.PillarWeight,
		update.DependenciesMet,
		update.CalculationVersion,
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
