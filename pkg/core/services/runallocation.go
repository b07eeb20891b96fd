package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/allocator"
	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/db"
)

// RunAllocationStore defines the database operations needed for an
// allocation run
type RunAllocationStore interface {
	GetStudentsByBatch(ctx context.Context, batchID string) ([]db.Student, error)
	GetPreferencesByBatch(ctx context.Context, batchID string) ([]db.Preference, error)
	GetCoursePool(ctx context.Context, batchID string) ([]db.Course, error)
	ReplaceBatchAllocations(ctx context.Context, batchID string, allocations []db.Allocation) error
}

// RunAllocationResult contains the outcome counts of an allocation run
type RunAllocationResult struct {
	BatchID           string
	TotalStudents     int
	AllocatedCount    int
	WaitlistedCount   int
	NotAllocatedCount int

	// AllocationsByCourse counts granted seats per course ID
	AllocationsByCourse map[string]int

	// AllocationsByCategory counts granted seats per reservation category
	AllocationsByCategory map[model.ReservationCategory]int
}

// RunAllocation runs the merit-ordered allocation for a batch and atomically
// replaces the batch's persisted allocation records.
//
// A quota ConfigurationError aborts the run before any seat state is built
// and nothing is persisted. The commit is all-or-nothing: the store replaces
// the batch's prior records inside one transaction, so a failed run leaves
// previously committed state untouched and re-runs on an unchanged snapshot
// are idempotent.
func RunAllocation(
	ctx context.Context,
	store RunAllocationStore,
	logger *zap.Logger,
	batchID string,
) (*RunAllocationResult, error) {
	logger.Debug("Starting allocation run", zap.String("batch_id", batchID))

	// Step 1: Load eligible students
	students, err := store.GetStudentsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students for batch %s: %w", batchID, err)
	}
	logger.Debug("Found students", zap.Int("count", len(students)))

	if len(students) == 0 {
		logger.Warn("No students in batch, nothing to allocate", zap.String("batch_id", batchID))
		return &RunAllocationResult{
			BatchID:               batchID,
			AllocationsByCourse:   map[string]int{},
			AllocationsByCategory: map[model.ReservationCategory]int{},
		}, nil
	}

	// Step 2: Load their preferences
	preferences, err := store.GetPreferencesByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences for batch %s: %w", batchID, err)
	}
	logger.Debug("Found preferences", zap.Int("count", len(preferences)))

	// Step 3: Load the batch's course pool
	pool, err := store.GetCoursePool(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course pool for batch %s: %w", batchID, err)
	}
	logger.Debug("Found pool courses", zap.Int("count", len(pool)))

	// Step 4: Run the allocation algorithm
	logger.Info("Running allocation algorithm",
		zap.String("batch_id", batchID),
		zap.Int("students", len(students)),
		zap.Int("courses", len(pool)))

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Students:    toModelStudents(students),
		Courses:     toModelCourses(pool),
		Preferences: toModelPreferences(preferences),
	})
	if err != nil {
		return nil, fmt.Errorf("allocation failed for batch %s: %w", batchID, err)
	}

	logger.Info("Allocation completed",
		zap.Int("allocated", outcome.AllocatedCount),
		zap.Int("waitlisted", outcome.WaitlistedCount),
		zap.Int("not_allocated", outcome.NotAllocatedCount))

	// Step 5: Persist, replacing any prior run for this batch
	records := toAllocationRecords(batchID, outcome.Allocations)
	if err := store.ReplaceBatchAllocations(ctx, batchID, records); err != nil {
		return nil, fmt.Errorf("failed to persist allocations for batch %s: %w", batchID, err)
	}
	logger.Info("Allocations saved", zap.Int("count", len(records)))

	return &RunAllocationResult{
		BatchID:               batchID,
		TotalStudents:         outcome.TotalStudents,
		AllocatedCount:        outcome.AllocatedCount,
		WaitlistedCount:       outcome.WaitlistedCount,
		NotAllocatedCount:     outcome.NotAllocatedCount,
		AllocationsByCourse:   outcome.AllocationsByCourse,
		AllocationsByCategory: outcome.AllocationsByCategory,
	}, nil
}

// toAllocationRecords converts engine allocations to database records.
// All records of a run share one timestamp.
func toAllocationRecords(batchID string, allocations []allocator.Allocation) []db.Allocation {
	now := time.Now().UTC()

	records := make([]db.Allocation, 0, len(allocations))
	for _, a := range allocations {
		records = append(records, db.Allocation{
			ID:             uuid.New().String(),
			BatchID:        batchID,
			StudentID:      a.StudentID,
			CourseID:       a.CourseID,
			Status:         string(a.Status),
			PreferenceRank: a.Rank,
			AllocatedAt:    now,
		})
	}
	return records
}
