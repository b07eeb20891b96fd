package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/core/services"
)

// ReportCmd creates the report command
func ReportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report <batch_id>",
		Short: "Show the allocation report for a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := services.BuildAllocationReport(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nAllocation report for batch %s\n\n", report.BatchID)
			fmt.Printf("Total students: %d\n", report.TotalStudents)
			fmt.Printf("Allocated:      %d\n", report.AllocatedCount)
			fmt.Printf("Waitlisted:     %d\n", report.WaitlistedCount)
			fmt.Printf("Not allocated:  %d\n\n", report.NotAllocatedCount)

			fmt.Println("By category:")
			for _, category := range model.Categories {
				fmt.Printf("  %-8s %d\n", category, report.ByCategory[category])
			}

			fmt.Println("\nBy preference rank:")
			for _, band := range []string{"1", "2", "3", "4+"} {
				fmt.Printf("  %-3s %d\n", band, report.ByPreference[band])
			}

			fmt.Println("\nCourses:")
			for _, row := range report.Courses {
				fmt.Printf("  %-10s %-30s %3d/%3d seats (%.0f%%)\n",
					row.CourseCode, row.CourseName, row.Allocated, row.MaxCapacity, row.FillRate*100)
			}
			fmt.Println()

			return nil
		},
	}
}
