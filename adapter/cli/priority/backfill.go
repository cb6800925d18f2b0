package priority

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aurumlife/aurum/adapter/cli"
)

var (
	backfillUserID    string
	backfillBatchSize int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Initialize scores for incomplete tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetContainer()
		out := cmd.OutOrStdout()
		if app == nil {
			fmt.Fprintln(out, "Priority engine requires a database connection.")
			fmt.Fprintln(out, "Start services with: docker-compose up -d")
			return nil
		}

		var userID *uuid.UUID
		if backfillUserID != "" {
			id, err := uuid.Parse(backfillUserID)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			userID = &id
		}

		if err := app.Dispatcher.EnqueueBulkInitialize(cmd.Context(), userID, backfillBatchSize); err != nil {
			return err
		}

		if userID != nil {
			fmt.Fprintf(out, "Enqueued score backfill for user %s\n", userID)
		} else {
			fmt.Fprintln(out, "Enqueued score backfill for all users")
		}
		return nil
	},
}

func init() {
	backfillCmd.Flags().StringVar(&backfillUserID, "user", "", "limit the backfill to one user")
	backfillCmd.Flags().IntVar(&backfillBatchSize, "batch", 0, "batch size (default 100)")
}
