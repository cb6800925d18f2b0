// Package cli implements the aurum command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aurumlife/aurum/internal/app"
)

var (
	verbose   bool
	logger    *slog.Logger
	container *app.Container
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "aurum",
	Short: "Aurum Life task priority engine",
	Long: `Aurum scores tasks 0-100 from urgency, explicit priority, the
pillar/area/project hierarchy, dependencies, progress and age, and keeps
those scores current as life changes.`,
}

// Execute runs the root command. The context is cancelled on SIGINT or
// SIGTERM so enqueue calls can abort cleanly.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// SetContainer hands the wired dependencies to the commands.
func SetContainer(c *app.Container) {
	container = c
}

// GetContainer returns the wired dependencies, or nil when the CLI runs
// without a database.
func GetContainer() *app.Container {
	return container
}
