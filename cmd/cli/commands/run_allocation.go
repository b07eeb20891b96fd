package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/services"
)

// RunAllocationCmd creates the runAllocation command
func RunAllocationCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runAllocation <batch_id>",
		Short: "Run the seat allocation for a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchID := args[0]

			app.Logger.Debug("runAllocation command", zap.String("batch_id", batchID))

			result, err := services.RunAllocation(app.Ctx, app.Database, app.Logger, batchID)
			if err != nil {
				return err
			}

			// Display results
			fmt.Printf("\nAllocation run completed for batch %s\n\n", result.BatchID)
			fmt.Printf("Total students: %d\n", result.TotalStudents)
			fmt.Printf("Allocated:      %d\n", result.AllocatedCount)
			fmt.Printf("Waitlisted:     %d\n", result.WaitlistedCount)
			fmt.Printf("Not allocated:  %d\n\n", result.NotAllocatedCount)

			if len(result.AllocationsByCourse) > 0 {
				fmt.Println("Seats granted per course:")
				for courseID, count := range result.AllocationsByCourse {
					fmt.Printf("  %s: %d\n", courseID, count)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
