package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusworks/seatwise/pkg/core/services"
)

// TrainModelCmd creates the trainModel command
func TrainModelCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trainModel",
		Short: "Train the suitability model on historical allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.TrainModel(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nModel trained successfully!\n\n")
			fmt.Printf("Model ID: %s\n", result.ModelID)
			fmt.Printf("Samples:  %d\n", result.Samples)
			fmt.Printf("CV R²:    %.4f\n\n", result.CVR2)

			fmt.Println("Feature importances:")
			for name, importance := range result.Importances {
				fmt.Printf("  %-20s %.4f\n", name, importance)
			}
			fmt.Println()

			return nil
		},
	}
}
