package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusworks/seatwise/pkg/core/services"
)

// RecommendCmd creates the recommend command
func RecommendCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <student_id> <course_id> [course_id...]",
		Short: "Score courses for a student, best fit first",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID := args[0]
			courseIDs := args[1:]

			result, err := services.RecommendCourses(app.Ctx, app.Database, app.Logger, studentID, courseIDs)
			if err != nil {
				return err
			}

			fmt.Printf("\nRecommendations for student %s (strategy: %s)\n\n", result.StudentID, result.Strategy)
			for i, rec := range result.Recommendations {
				fmt.Printf("  %2d. %-10s %-30s %6.2f  %s\n",
					i+1, rec.CourseCode, rec.CourseName, rec.Score, rec.Label)
			}
			fmt.Println()

			return nil
		},
	}
}
