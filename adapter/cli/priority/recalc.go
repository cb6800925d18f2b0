package priority

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aurumlife/aurum/adapter/cli"
)

var (
	recalcTaskID      string
	recalcCompletedID string
	recalcAreaID      string
	recalcProjectID   string
	recalcImportance  int
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Enqueue priority score recalculation jobs",
	Long: `Enqueues scoring jobs. Pick exactly one trigger:

  --task       rescore a single task
  --completed  rescore everything that depended on a completed task
  --area       rescore all incomplete tasks under an area
  --project    rescore all incomplete tasks in a project`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		out := cmd.OutOrStdout()
		if app == nil {
			fmt.Fprintln(out, "Priority engine requires a database connection.")
			fmt.Fprintln(out, "Start services with: docker-compose up -d")
			return nil
		}

		ctx := cmd.Context()

		set := 0
		for _, v := range []string{recalcTaskID, recalcCompletedID, recalcAreaID, recalcProjectID} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("exactly one of --task, --completed, --area or --project is required")
		}

		switch {
		case recalcTaskID != "":
			id, err := uuid.Parse(recalcTaskID)
			if err != nil {
				return fmt.Errorf("invalid task id: %w", err)
			}
			if err := app.Dispatcher.EnqueueTaskScore(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Enqueued rescore for task %s\n", id)

		case recalcCompletedID != "":
			id, err := uuid.Parse(recalcCompletedID)
			if err != nil {
				return fmt.Errorf("invalid task id: %w", err)
			}
			if err := app.Dispatcher.EnqueueTaskCompleted(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Enqueued dependent rescoring for completed task %s\n", id)

		case recalcAreaID != "":
			id, err := uuid.Parse(recalcAreaID)
			if err != nil {
				return fmt.Errorf("invalid area id: %w", err)
			}
			if err := app.Dispatcher.EnqueueAreaImportanceChanged(ctx, id, recalcImportance); err != nil {
				return err
			}
			fmt.Fprintf(out, "Enqueued rescoring for area %s\n", id)

		case recalcProjectID != "":
			id, err := uuid.Parse(recalcProjectID)
			if err != nil {
				return fmt.Errorf("invalid project id: %w", err)
			}
			if err := app.Dispatcher.EnqueueProjectImportanceChanged(ctx, id, recalcImportance); err != nil {
				return err
			}
			fmt.Fprintf(out, "Enqueued rescoring for project %s\n", id)
		}

		return nil
	},
}

func init() {
	recalcCmd.Flags().StringVar(&recalcTaskID, "task", "", "task id to rescore")
	recalcCmd.Flags().StringVar(&recalcCompletedID, "completed", "", "completed task id whose dependents to rescore")
	recalcCmd.Flags().StringVar(&recalcAreaID, "area", "", "area id whose tasks to rescore")
	recalcCmd.Flags().StringVar(&recalcProjectID, "project", "", "project id whose tasks to rescore")
	recalcCmd.Flags().IntVar(&recalcImportance, "importance", 0, "new importance (informational, with --area or --project)")
}
