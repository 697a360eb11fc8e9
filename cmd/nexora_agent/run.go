package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nexora/opportunity-agent/internal/observability"
)

var runUser string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once",
	Long:  `Run one fetch, dedupe, match and persist sweep for a single user or for every user, then exit.`,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runUser, "user", "", "Run for a single user ID instead of all users")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	c, err := buildComponents(ctx)
	if err != nil {
		return fmt.Errorf("failed to wire components: %w", err)
	}
	defer c.close()

	printer := observability.NewPrinter(os.Stdout)

	if runUser != "" {
		userID, err := uuid.Parse(runUser)
		if err != nil {
			return fmt.Errorf("invalid user ID %q: %w", runUser, err)
		}
		result, err := c.pipeline.RunForUser(ctx, userID)
		if err != nil {
			return err
		}
		printer.PrintRunSummary(result)
		return nil
	}

	userIDs, err := c.db.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		fmt.Println("No users registered, nothing to run.")
		return nil
	}

	failed := 0
	for _, userID := range userIDs {
		result, err := c.pipeline.RunForUser(ctx, userID)
		if err != nil {
			failed++
			log.Printf("[run] user %s failed: %v", userID, err)
			continue
		}
		printer.PrintRunSummary(result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d user runs failed", failed, len(userIDs))
	}
	return nil
}
