package services

import (
	"fmt"
	"math"
	"time"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// Snapshot carries the resolved hierarchy values for one task. It is also
// what gets cached back onto the task document after a recomputation.
type Snapshot struct {
	AreaImportance    int
	ProjectImportance int
	PillarWeight      float64
}

// DefaultSnapshot returns the values used when a task has no resolvable
// hierarchy links.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		AreaImportance:    3,
		ProjectImportance: 3,
		PillarWeight:      1.0,
	}
}

// CalculatorConfig tunes the point budgets of the score components.
type CalculatorConfig struct {
	MaxScore                float64
	OverdueUrgency          float64
	NoDueDateUrgency        float64
	DependencyMetPoints     float64
	DependencyBlockedPoints float64
	ProgressMax             float64
	AgeBonusMax             float64
	AgeBonusThresholdDays   int
}

// DefaultCalculatorConfig returns the production point budgets.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		MaxScore:                100.0,
		OverdueUrgency:          40.0,
		NoDueDateUrgency:        5.0,
		DependencyMetPoints:     15.0,
		DependencyBlockedPoints: 2.0,
		ProgressMax:             10.0,
		AgeBonusMax:             3.0,
		AgeBonusThresholdDays:   7,
	}
}

// ScoreCalculator combines urgency, priority, hierarchy, dependency,
// progress and age signals into a bounded 0-100 priority score. It is a
// pure function of its inputs and the supplied clock value.
type ScoreCalculator struct {
	config CalculatorConfig
}

// NewScoreCalculator creates a calculator with the given configuration.
func NewScoreCalculator(cfg CalculatorConfig) *ScoreCalculator {
	return &ScoreCalculator{config: cfg}
}

// Score computes the priority score for a task along with a human-readable
// breakdown of the components. Higher scores surface first in the Today view.
func (c *ScoreCalculator) Score(t *task.Task, snapshot Snapshot, dependenciesMet bool, now time.Time) (float64, string) {
	urgency := c.urgencyScore(t.DueDate, now)
	priority := t.Priority.Points()
	hierarchy := c.hierarchyScore(snapshot)
	dependency := c.dependencyScore(dependenciesMet)
	progress := c.progressScore(t.ProgressPercentage)
	age := c.ageBonus(t.CreatedAt, now)

	total := urgency + priority + hierarchy + dependency + progress + age
	final := math.Min(total, c.config.MaxScore)

	explanation := fmt.Sprintf(
		"urgency=%.1f priority=%.1f hierarchy=%.1f dependency=%.1f progress=%.1f age=%.1f",
		urgency, priority, hierarchy, dependency, progress, age,
	)

	return final, explanation
}

// urgencyScore maps the time remaining until the due date onto flat bands,
// with a slow decay past two weeks. Overdue gets the full budget.
func (c *ScoreCalculator) urgencyScore(due *time.Time, now time.Time) float64 {
	if due == nil {
		return c.config.NoDueDateUrgency
	}

	// Whole days, floored. A task due later today counts as day zero and
	// lands in the overdue band.
	days := wholeDays(due.Sub(now))

	switch {
	case days <= 0:
		return c.config.OverdueUrgency
	case days <= 1:
		return 35.0
	case days <= 3:
		return 25.0
	case days <= 7:
		return 15.0
	case days <= 14:
		return 8.0
	default:
		return math.Max(0, 5.0-float64(days)*0.1)
	}
}

func (c *ScoreCalculator) hierarchyScore(snapshot Snapshot) float64 {
	areaScore := float64(snapshot.AreaImportance) / 5.0 * 10.0
	projectScore := float64(snapshot.ProjectImportance) / 5.0 * 10.0
	pillarScore := math.Min(snapshot.PillarWeight*2.5, 5.0)
	return areaScore + projectScore + pillarScore
}

func (c *ScoreCalculator) dependencyScore(met bool) float64 {
	if met {
		return c.config.DependencyMetPoints
	}
	// Blocked tasks keep a small score so they still surface in planning.
	return c.config.DependencyBlockedPoints
}

func (c *ScoreCalculator) progressScore(percentage float64) float64 {
	if percentage <= 0 {
		return 0
	}
	return math.Min(percentage/10.0, c.config.ProgressMax)
}

// ageBonus nudges tasks older than a week upward to prevent stagnation.
func (c *ScoreCalculator) ageBonus(createdAt time.Time, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	daysOld := wholeDays(now.Sub(createdAt))
	if daysOld <= c.config.AgeBonusThresholdDays {
		return 0
	}
	return math.Min(float64(daysOld)*0.1, c.config.AgeBonusMax)
}

func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24.0))
}
